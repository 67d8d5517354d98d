package policy

// Selector decide qué arm mostrar en la siguiente impresión y aprende del
// outcome observado. Una instancia vive exactamente un run de simulación:
// no hay reset, el estado acumulado nunca se reutiliza entre runs.
type Selector interface {
	// Name devuelve el identificador de la policy para logs y reports.
	Name() string

	// Select devuelve el id del arm a mostrar en esta impresión.
	Select() int

	// Observe registra el outcome binario de la impresión del arm dado.
	// Devuelve error si el arm no pertenece al registry de la policy.
	Observe(armID, outcome int) error
}
