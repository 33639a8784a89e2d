package model

import (
	"log"
	"os"
)

// EmbedderInterface определяет интерфейс для создания эмбеддингов
type EmbedderInterface interface {
	Embed(text string) ([]float32, error)
}

// NewEmbedder настраивает Ollama эмбеддер из переменных окружения
func NewEmbedder() EmbedderInterface {
	ollamaURL := os.Getenv("OLLAMA_EMBEDDING_URL")
	ollamaModel := os.Getenv("OLLAMA_EMBEDDING_MODEL")

	log.Printf("[EMBEDDER] Uses local Ollama for embeddings (%s)", ollamaModel)

	return NewOllamaEmbedder(ollamaURL, ollamaModel)
}
