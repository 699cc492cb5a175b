package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/manabu/data/facts.db"
	}
	if cfg.Storage.MongoURI == "" {
		cfg.Storage.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.Storage.MongoDatabase == "" {
		cfg.Storage.MongoDatabase = "manabu"
	}
	if cfg.Storage.QueryTimeout == 0 {
		cfg.Storage.QueryTimeout = 5 * time.Second
	}
	if cfg.Retrieval.MinContentLength == 0 {
		cfg.Retrieval.MinContentLength = 20
	}
	if cfg.Retrieval.MaxContentLength == 0 {
		cfg.Retrieval.MaxContentLength = 500
	}
	if cfg.Retrieval.CandidateLimit == 0 {
		cfg.Retrieval.CandidateLimit = 50
	}
	if cfg.Retrieval.TrustedSource == "" {
		cfg.Retrieval.TrustedSource = "user_teaching"
	}
	if cfg.Seed.MaxOperand == 0 {
		cfg.Seed.MaxOperand = 10
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".txt", ".md", ".html", ".pdf", ".docx", ".xlsx"}
	}
	if cfg.Ingest.MaxStatements == 0 {
		cfg.Ingest.MaxStatements = 500
	}
	if cfg.Ingest.FetchTimeout == 0 {
		cfg.Ingest.FetchTimeout = 15 * time.Second
	}
}
