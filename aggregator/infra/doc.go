// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - ConnectionPool: http.Transport por lote + semáforo por host
//   - ChanPool: semáforo simples baseado em channel
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: destinos de FetchEvent
package infra
