package config

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"
)

// Default values for testing.
const (
	defaultTimeoutSeconds     = 30
	defaultMongoURI           = "mongodb://localhost:27017/adminledger"
	defaultMongoHost          = "localhost"
	defaultMongoPort          = "27017"
	defaultDatabase           = "adminledger"
	defaultStatementsDir      = "./statements"
	defaultProcessedDir       = "processed"
	defaultImportDir          = "inbox"
	defaultMoveProcessedFiles = false
	defaultPaymentsAPIBase    = "http://localhost:8080/api"
	defaultSampleDataDir      = "tmp/sample"
	defaultSampleDataRows     = 100
	envMongoURI               = "MONGO_URI"
	envMongoHost              = "MONGO_HOST"
	envMongoDatabase          = "MONGO_DATABASE"
	envStatementsDirectory    = "STATEMENTS_DIR"
	envProcessedDirectory     = "PROCESSED_DIR"
	envImportDirectory        = "IMPORT_DIR"
	envMoveProcessedFiles     = "MOVE_PROCESSED_FILES"
	envMongoUser              = "MONGO_USER"
	envMongoPassword          = "MONGO_PASSWORD"
	envPaymentsAPIBase        = "PAYMENTS_API_BASE"
	envPaymentsAPIKey         = "PAYMENTS_API_KEY"
)

// LoadConfig loads the application configuration from environment variables or uses default values.
func LoadConfig(ctx context.Context, logger *slog.Logger) *Config {
	mongoURI := os.Getenv(envMongoURI)
	mongoURI = formatMongoURI(ctx, mongoURI, logger)

	database := os.Getenv(envMongoDatabase)
	if database == "" {
		database = defaultDatabase
		logger.DebugContext(ctx, "Using default Mongo database", "database", database)
	}

	statementsDirectory := setEnvStatementsDir(ctx, *logger)

	// Configure the dirs for imported/processed statements.
	importDir := setImportDir(ctx, statementsDirectory, *logger)
	processedDir := setProcessedDir(ctx, statementsDirectory, *logger)

	logger.DebugContext(ctx, "Constructed directory paths", "import", importDir, "processed", processedDir)

	moveProcessedFilesStr := os.Getenv(envMoveProcessedFiles)
	moveProcessedFiles := defaultMoveProcessedFiles
	if moveProcessedFilesStr != "" {
		parsedBool, err := strconv.ParseBool(moveProcessedFilesStr)
		if err != nil {
			logger.WarnContext(
				ctx,
				"Invalid value for MOVE_PROCESSED_FILES, using default",
				"value", moveProcessedFilesStr,
				"default", defaultMoveProcessedFiles,
				"error", err,
			)
		} else {
			moveProcessedFiles = parsedBool
			logger.DebugContext(ctx, "Set moveProcessedFiles from environment variable", "value", moveProcessedFiles)
		}
	} else {
		logger.DebugContext(ctx, "Using default value for moveProcessedFiles", "value", defaultMoveProcessedFiles)
	}

	paymentsAPIBase := os.Getenv(envPaymentsAPIBase)
	if paymentsAPIBase == "" {
		paymentsAPIBase = defaultPaymentsAPIBase
		logger.DebugContext(ctx, "Using default payments API base", "base", paymentsAPIBase)
	}
	paymentsAPIKey := os.Getenv(envPaymentsAPIKey)

	return &Config{
		MongoURI:           mongoURI,
		Database:           database,
		ImportDir:          importDir,
		ProcessedDir:       processedDir,
		MoveProcessedFiles: moveProcessedFiles,
		PaymentsAPIBase:    paymentsAPIBase,
		PaymentsAPIKey:     paymentsAPIKey,
		SampleDataDir:      defaultSampleDataDir,
		SampleDataRows:     defaultSampleDataRows,
		Timeout:            defaultTimeoutSeconds * time.Second,
	}
}

func setEnvStatementsDir(ctx context.Context, logger slog.Logger) string {
	statementsDirectory := os.Getenv(envStatementsDirectory)
	if statementsDirectory == "" {
		statementsDirectory = defaultStatementsDir
		logger.DebugContext(ctx, "Using default statements directory", "dir", statementsDirectory)
	} else {
		logger.DebugContext(ctx, "Using statements directory from environment variable", "dir", statementsDirectory)
	}

	return statementsDirectory
}

// Format the directory in which unimported statement files exist.
func setImportDir(ctx context.Context, statementsDirectory string, logger slog.Logger) string {
	return fmt.Sprintf("%s/%s", statementsDirectory, getImportDirName(ctx, logger))
}

// Format the directory in which processed statement files are moved to.
func setProcessedDir(ctx context.Context, statementsDirectory string, logger slog.Logger) string {
	return fmt.Sprintf("%s/%s", statementsDirectory, getProcessedDirName(ctx, logger))
}

// Fetch the `processedDirName` env var or set to a default value.
func getProcessedDirName(ctx context.Context, logger slog.Logger) string {
	processedDirName := os.Getenv(envProcessedDirectory)
	if processedDirName == "" {
		processedDirName = defaultProcessedDir
		logger.DebugContext(ctx, "Using default processed directory name", "dir", processedDirName)
	} else {
		logger.DebugContext(ctx, "Using processed directory name from environment variable", "dir", processedDirName)
	}

	return processedDirName
}

// Fetch the `importDirName` env var or set to a default value.
func getImportDirName(ctx context.Context, logger slog.Logger) string {
	importDirName := os.Getenv(envImportDirectory)
	if importDirName == "" {
		importDirName = defaultImportDir
		logger.DebugContext(ctx, "Using default import directory name", "dir", importDirName)
	} else {
		logger.DebugContext(ctx, "Using import directory name from environment variable",
			"dir", importDirName)
	}

	return importDirName
}

// formatMongoURI formats mongo settings to a url and return the result.
func formatMongoURI(
	ctx context.Context,
	mongoURI string,
	logger *slog.Logger,
) string {
	if mongoURI != "" {
		logger.DebugContext(ctx, "Using MongoDB URI from environment variable", "uri", mongoURI)
		return mongoURI
	}

	mongoHost := os.Getenv(envMongoHost)
	if mongoHost == "" {
		mongoHost = defaultMongoHost
		logger.DebugContext(ctx, "Using default MongoDB host", "host", mongoHost)
	} else {
		logger.DebugContext(ctx, "Using MongoDB host from environment variable", "host", mongoHost)
	}

	mongoUser := os.Getenv(envMongoUser)
	mongoPassword := os.Getenv(envMongoPassword)

	if mongoUser != "" && mongoPassword != "" {
		hostPort := net.JoinHostPort(mongoHost, defaultMongoPort)
		mongoURI = fmt.Sprintf(
			"mongodb://%s:%s@%s/adminledger?authSource=admin",
			mongoUser,
			mongoPassword,
			hostPort,
		)
		logger.DebugContext(ctx, "Created MongoDB URI from user, password, and host", "uri", mongoURI)
	} else {
		mongoURI = defaultMongoURI
		logger.DebugContext(ctx, "Using default MongoDB URI", "uri", mongoURI)
	}
	return mongoURI
}
