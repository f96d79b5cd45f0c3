// Package application contém os casos de uso do agregador: o fetch individual
// (Fetcher), o fan-out/fan-in de um lote (Orchestrator) e a admissão de lotes
// concorrentes (Admission).
//
// Ele depende apenas do pacote domain e não conhece net/http.
package application
