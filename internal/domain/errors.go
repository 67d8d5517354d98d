package domain

import "errors"

// Errores centinela del núcleo de simulación. Se envuelven con
// fmt.Errorf("...: %w") en el punto de origen y se comprueban con errors.Is.
var (
	// ErrConfiguration indica parámetros de experimento inválidos: runs o
	// impresiones no positivos, set de arms vacío, ids duplicados, rate
	// fuera de [0,1]. Se señala antes de ejecutar ningún run.
	ErrConfiguration = errors.New("invalid simulation configuration")

	// ErrInternalConsistency indica un bug del caller o interno: la policy
	// referenció un arm id que no existe en su registry. Fatal, nunca se
	// ignora en silencio.
	ErrInternalConsistency = errors.New("internal consistency violation")
)
