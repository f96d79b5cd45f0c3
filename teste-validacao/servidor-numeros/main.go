package main

// Upstream para validação manual do gateway:
//
//	/primes, /fibo, /even, /rand   200 com {"numbers":[...]}
//	qualquer rota + ?delay=1s       atrasa a resposta
//	qualquer rota + ?fail=503       responde com o status dado
//	/garbage                        200 com corpo que não é JSON
//
// Ex.: curl 'localhost:8008/numbers?url=http://localhost:8090/primes?delay=1s&url=http://localhost:8090/fibo'

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var series = map[string][]int{
	"/primes": {2, 3, 5, 7, 11, 13, 17, 19, 23, 29},
	"/fibo":   {1, 1, 2, 3, 5, 8, 13, 21, 34, 55},
	"/even":   {2, 4, 6, 8, 10, 12, 14, 16, 18, 20},
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if d, err := time.ParseDuration(q.Get("delay")); err == nil {
			time.Sleep(d)
		}
		if code, err := strconv.Atoi(q.Get("fail")); err == nil {
			http.Error(w, http.StatusText(code), code)
			return
		}

		logger.Info().Str("path", r.URL.Path).Msg("request")
		switch r.URL.Path {
		case "/garbage":
			_, _ = w.Write([]byte("not json"))
			return
		case "/rand":
			nums := make([]int, 10)
			for i := range nums {
				nums[i] = rand.IntN(100)
			}
			writeNumbers(w, nums)
			return
		}
		nums, ok := series[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeNumbers(w, nums)
	})

	logger.Info().Msg("upstream de números rodando em http://localhost:8090")
	if err := http.ListenAndServe("localhost:8090", nil); err != nil {
		logger.Fatal().Err(err).Msg("erro ao subir o servidor")
	}
}

func writeNumbers(w http.ResponseWriter, nums []int) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]int{"numbers": nums})
}
