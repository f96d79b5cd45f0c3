// Package aggregator fornece os adapters HTTP (net/http) do agregador de números.
//
// Visão geral (camadas):
//
//   - domain: tipos e contratos (Outcome, ResultSet, ConnectionPool, StatsStore)
//   - application: fetch individual, fan-out/fan-in do lote e admissão, sem net/http
//   - infra: pool de conexões por lote, semáforos e destinos de estatística
//   - aggregator (este pacote): handler /numbers, /stats, middlewares e serialização
//
// Fluxo de GET /numbers?url=...&url=...:
//
//   1) Extrai as URLs repetidas da query (vazias são ignoradas)
//   2) Sem URLs, responde 400 sem chamar o orquestrador
//   3) Chama o orquestrador, que busca todas as URLs ao mesmo tempo
//   4) Responde 200 com um array JSON na mesma ordem da entrada; falhas viram
//      null (ou {"error": "..."} com FailureObject)
//
// Variáveis de ambiente do binário (cmd/numbers-gateway) controlam o comportamento,
// como MODE, PER_HOST_LIMIT, MAX_URLS, FAILURE_ENCODING e CONCURRENCY_MAX.
package aggregator
