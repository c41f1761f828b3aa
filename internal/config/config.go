package config

import (
	"errors"
	"fmt"
	"os"
)

var errEnvVarNotFound error = errors.New("environment variable not found")

const (
	apiPortEnvKey         = "API_PORT"
	dbConnEnvKey          = "DB_CONNECTION_URL"
	jwtSecretEnvKey       = "JWT_SECRET"
	evmFactoryEnvKey      = "EVM_FACTORY_ADDRESS"
	solanaProgramIDEnvKey = "SOLANA_PROGRAM_ID"
)

type App struct {
	Port            string
	DBConnectionURL string
	JWTSecret       string
	EVMFactory      string
	SolanaProgramID string
}

func NewApp() (App, error) {

	port, ok := os.LookupEnv(apiPortEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, apiPortEnvKey)
	}

	dbConn, ok := os.LookupEnv(dbConnEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, dbConnEnvKey)
	}

	jwtSecret, ok := os.LookupEnv(jwtSecretEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, jwtSecretEnvKey)
	}

	factory, ok := os.LookupEnv(evmFactoryEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, evmFactoryEnvKey)
	}

	programID, ok := os.LookupEnv(solanaProgramIDEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, solanaProgramIDEnvKey)
	}

	return App{
		Port:            port,
		DBConnectionURL: dbConn,
		JWTSecret:       jwtSecret,
		EVMFactory:      factory,
		SolanaProgramID: programID,
	}, nil
}
