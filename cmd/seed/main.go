package main

import (
	"context"
	"log"
	"os"

	"medlit-rag-be/internal/config"
	"medlit-rag-be/internal/model"
	"medlit-rag-be/internal/repository/implementation"
	"medlit-rag-be/pkg/chunker"
	"medlit-rag-be/pkg/database"
	"medlit-rag-be/pkg/embedding"
	"medlit-rag-be/pkg/embedding/jina"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type samplePaper struct {
	sourceFile string
	title      string
	page       int
	content    string
}

// Small set of abstracts for local development, enough to exercise
// retrieval without indexing a real corpus.
var samplePapers = []samplePaper{
	{
		sourceFile: "sepsis_fluid_resuscitation_2021.pdf",
		title:      "Fluid Resuscitation Strategies in Septic Shock",
		page:       1,
		content: "Early goal-directed fluid resuscitation remains a cornerstone of septic shock management. " +
			"In a multicenter cohort of 2,184 adult patients, balanced crystalloids were associated with lower 28-day mortality " +
			"compared with normal saline (24.1% vs 27.8%). Fluid overload beyond 3 liters in the first 6 hours correlated with " +
			"increased need for mechanical ventilation and longer ICU stays.",
	},
	{
		sourceFile: "pediatric_burn_dosage_2019.pdf",
		title:      "Analgesic Dosing in Pediatric Burn Patients",
		page:       1,
		content: "Pediatric burn patients present unique analgesic dosing challenges due to altered pharmacokinetics. " +
			"We reviewed 412 cases of partial-thickness burns covering 10-30% total body surface area. Weight-based morphine " +
			"dosing at 0.05-0.1 mg/kg IV achieved adequate analgesia in 78% of patients, with respiratory depression observed " +
			"in under 1% when titration protocols were followed.",
	},
	{
		sourceFile: "ards_ventilation_meta_2022.pdf",
		title:      "Lung-Protective Ventilation in ARDS: A Meta-Analysis",
		page:       1,
		content: "This meta-analysis of 19 randomized trials (n=5,769) confirms that low tidal volume ventilation " +
			"(6 mL/kg predicted body weight) reduces mortality in acute respiratory distress syndrome. Prone positioning for " +
			"at least 16 hours daily provided additional benefit in moderate-to-severe ARDS, with a pooled risk ratio of 0.74 " +
			"for 28-day mortality.",
	},
}

func main() {
	cfg := config.Load()

	dsn := cfg.Database.Connection
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embedder = jina.NewJinaProvider(cfg.Keys.Jina)
	}

	repo := implementation.NewChunkRepository(db)
	splitter := chunker.NewSplitter(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	ctx := context.Background()

	log.Println("Seeding sample papers...")

	for _, paper := range samplePapers {
		pieces := splitter.Split(paper.content)

		var chunks []*model.PaperChunk
		for i, piece := range pieces {
			res, err := embedder.Generate(piece, "RETRIEVAL_DOCUMENT")
			if err != nil {
				log.Printf("Error embedding %s chunk %d: %v, skipping paper", paper.sourceFile, i, err)
				chunks = nil
				break
			}
			chunks = append(chunks, &model.PaperChunk{
				Id:             uuid.New(),
				SourceFile:     paper.sourceFile,
				Title:          paper.title,
				Page:           paper.page,
				ChunkIndex:     i,
				Content:        piece,
				EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
			})
		}
		if chunks == nil {
			continue
		}

		if err := repo.ReplaceForSource(ctx, paper.sourceFile, chunks); err != nil {
			log.Printf("Error storing %s: %v", paper.sourceFile, err)
			os.Exit(1)
		}
		log.Printf("Seeded %s (%d chunks)", paper.sourceFile, len(chunks))
	}

	log.Println("Seeding completed!")
}
