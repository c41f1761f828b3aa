package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"covault/internal/chain"
	"covault/internal/config"
	"covault/internal/core"
	"covault/internal/db"
	"covault/internal/http/handler"
	"covault/internal/http/handler/middleware"
	"covault/internal/http/payload"
	"covault/internal/http/server"
	"covault/internal/repository"
	"covault/pkg/jwt"
	"covault/pkg/log"

	"go.uber.org/zap/zapcore"
)

func Start() error {
	logger := log.NewZapLogger("covault", zapcore.InfoLevel)

	config, err := config.NewApp()
	if err != nil {
		logger.Errorw("failed to create config", "error", err)
		return err
	}

	dbConn, err := db.NewPostgresDB(config.DBConnectionURL)
	if err != nil {
		logger.Errorw("failed to connect to database", "error", err)
		return err
	}

	// jwt service
	jwtService := jwt.NewJWTService([]byte(config.JWTSecret))

	// repository
	repo := repository.NewVaultRepository(dbConn)

	err = repo.MigrateTables()
	if err != nil {
		logger.Errorw("failed to migrate tables to database", "error", err)
		return err
	}

	// chain adapters
	solanaAdapter, err := chain.NewSolanaAdapter(config.SolanaProgramID)
	if err != nil {
		logger.Errorw("failed to create solana adapter", "error", err)
		return err
	}

	evmAdapter, err := chain.NewEVMAdapter(config.EVMFactory)
	if err != nil {
		logger.Errorw("failed to create evm adapter", "error", err)
		return err
	}

	chains := chain.NewRegistry(solanaAdapter, evmAdapter)

	// covault
	covault := core.NewCovault(
		logger,
		repo,
		chains)

	// handler
	govHlr := handler.NewGovHandler(
		logger,
		payload.DecodeValidator{},
		covault,
		jwtService)

	// middleware
	session := middleware.NewSessionMiddleware(logger, jwtService)
	mux := http.NewServeMux()
	hdlr := middleware.NewLoggingMiddleware(logger).Logging(mux)
	hdlr = middleware.NewRequestIDMiddleware().RequestID(hdlr)

	// register routes
	mux.HandleFunc(handler.CreateSession, govHlr.CreateSessionHandler)

	mux.Handle(handler.CreateVault, session.RequireSession(http.HandlerFunc(govHlr.CreateVaultHandler)))
	mux.HandleFunc(handler.GetVault, govHlr.GetVaultHandler)
	mux.Handle(handler.ListVaults, session.RequireSession(http.HandlerFunc(govHlr.ListVaultsHandler)))
	mux.Handle(handler.PrepareDeployment, session.RequireSession(http.HandlerFunc(govHlr.PrepareDeploymentHandler)))
	mux.Handle(handler.ActivateVault, session.RequireSession(http.HandlerFunc(govHlr.ActivateVaultHandler)))

	mux.Handle(handler.AddSigner, session.RequireSession(http.HandlerFunc(govHlr.AddSignerHandler)))
	mux.Handle(handler.RemoveSigner, session.RequireSession(http.HandlerFunc(govHlr.RemoveSignerHandler)))
	mux.HandleFunc(handler.ListSigners, govHlr.ListSignersHandler)
	mux.Handle(handler.UpdateThreshold, session.RequireSession(http.HandlerFunc(govHlr.UpdateThresholdHandler)))

	mux.Handle(handler.CreateProposal, session.RequireSession(http.HandlerFunc(govHlr.CreateProposalHandler)))
	mux.HandleFunc(handler.ListProposals, govHlr.ListProposalsHandler)
	mux.HandleFunc(handler.GetProposal, govHlr.GetProposalHandler)

	mux.Handle(handler.VoteOnProposal, session.RequireSession(http.HandlerFunc(govHlr.VoteOnProposalHandler)))
	mux.HandleFunc(handler.ListVotes, govHlr.ListVotesHandler)
	mux.Handle(handler.PrepareExecution, session.RequireSession(http.HandlerFunc(govHlr.PrepareExecutionHandler)))
	mux.Handle(handler.MarkExecuted, session.RequireSession(http.HandlerFunc(govHlr.MarkExecutedHandler)))

	mux.HandleFunc(handler.ListActivity, govHlr.ListActivityHandler)

	srv := server.NewHTTP(logger, hdlr, config.Port)
	return run(srv)
}

func run(server *server.HTTPServer) error {
	// expect a signal to gracefully shutdown the server
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	errChan := server.Run()

	var err error
	select {
	case <-sig:
	case err = <-errChan:
	}

	sdErr := server.Shutdown()
	if err == http.ErrServerClosed && sdErr != nil {
		return fmt.Errorf("server shutdown: %w", sdErr)
	}

	return err
}
