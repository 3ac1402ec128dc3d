package domain

import "errors"

// Erros sentinela do núcleo. Falhas transitórias de fonte e de persistência
// nunca abortam uma carga inteira; acumulam no relatório do run.
var (
	// ErrNotFound indica segmento ou índice inexistente ou inativo.
	ErrNotFound = errors.New("registro não encontrado")

	// ErrSourceUnavailable indica falha transitória da fonte de cotações
	// (rede, timeout, resposta inválida). Seguro repetir a carga depois.
	ErrSourceUnavailable = errors.New("fonte de cotações indisponível")

	// ErrThrottled indica rate limit da fonte (HTTP 429).
	ErrThrottled = errors.New("limite de requisições da fonte excedido")

	// ErrPersistence indica falha de escrita ou leitura no banco.
	ErrPersistence = errors.New("falha de persistência")
)
