package domain

// BeliefState son los parámetros de forma de la posterior Beta de un arm:
// Successes = clicks observados + 1, Failures = no-clicks observados + 1.
// El prior uniforme Beta(1,1) inyecta el +1 de cada lado, así que ambos
// valores son estrictamente positivos en todo momento y solo crecen.
type BeliefState struct {
	Successes int
	Failures  int
}

// NewBeliefState devuelve el prior uniforme Beta(1,1).
func NewBeliefState() *BeliefState {
	return &BeliefState{Successes: 1, Failures: 1}
}

// Update registra un outcome observado: un click incrementa Successes,
// cualquier otro valor incrementa Failures. Única mutación permitida.
func (b *BeliefState) Update(outcome int) {
	if outcome == 1 {
		b.Successes++
	} else {
		b.Failures++
	}
}

// Trials devuelve el número de impresiones observadas (sin contar el prior).
func (b BeliefState) Trials() int {
	return b.Successes + b.Failures - 2
}

// Mean devuelve la media de la posterior Beta, la estimación puntual
// del CTR del arm según la evidencia acumulada.
func (b BeliefState) Mean() float64 {
	return float64(b.Successes) / float64(b.Successes+b.Failures)
}
