// Package domain define os tipos e contratos do agregador de números.
//
// Este pacote não depende de net/http nem de implementações concretas:
// Outcome/ResultSet descrevem o resultado de um lote, ConnectionPool descreve
// o recurso de conexões compartilhado por um lote e StatsStore descreve onde
// os eventos de fetch são registrados.
package domain
