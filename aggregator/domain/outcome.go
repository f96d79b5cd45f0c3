package domain

import "encoding/json"

// Outcome é o resultado terminal de um fetch: ou um valor JSON já validado,
// ou um motivo de falha. O valor zero é uma falha sem motivo.
type Outcome struct {
	Value  json.RawMessage
	Reason string
	ok     bool
}

func Success(v json.RawMessage) Outcome {
	return Outcome{Value: v, ok: true}
}

func Failure(reason string) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) OK() bool { return o.ok }

// ResultSet mantém a mesma ordem (e o mesmo tamanho) da lista de URLs do lote.
type ResultSet []Outcome

// Counts devolve quantos outcomes deram certo e quantos falharam.
func (rs ResultSet) Counts() (succeeded, failed int) {
	for _, o := range rs {
		if o.ok {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
