package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/udp-socket-manager/crypto"
	udppb "github.com/beka-birhanu/udp-socket-manager/encoding"
	udpsocket "github.com/beka-birhanu/udp-socket-manager/socket"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	socket_i "github.com/beka-birhanu/vinom-common/interfaces/socket"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/beka-birhanu/vinom-territory-server/api"
	"github.com/beka-birhanu/vinom-territory-server/config"
	"github.com/beka-birhanu/vinom-territory-server/service"
	"google.golang.org/grpc"
)

// Global variables for dependencies
var (
	grpcConnListener net.Listener
	grpcServer       *grpc.Server
	httpServer       *http.Server
	udpSocketManager socket_i.ServerSocketManager
	outbox           *service.Outbox
	lobbyRegistry    *service.LobbyRegistry
	appLogger        general_i.Logger
)

func newLogger(prefix, color string) general_i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initUDPSocketManager() {
	serverAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.UdpPort))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Resolving server address: %v", err))
		os.Exit(1)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Generating RSA key: %v", err))
		os.Exit(1)
	}

	serverLogger, err := logger.New("UDP-SOCKET", config.ColorBlue, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating UDP socket manager logger: %v", err))
		os.Exit(1)
	}
	server, err := udpsocket.NewServerSocketManager(
		udpsocket.ServerConfig{
			ListenAddr:  serverAddr,
			AsymmCrypto: crypto.NewRSA(privateKey),
			SymmCrypto:  crypto.NewAESCBC(),
			Encoder:     &udppb.Protobuf{},
			HMAC:        &crypto.HMAC{},
			Logger:      serverLogger,
		},
		udpsocket.ServerWithReadBufferSize(config.Envs.UDPBufferSize),
		udpsocket.ServerWithHeartbeatExpiration(config.Envs.UDPHeartbeat()),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating server UDP socket manager: %v", err))
		os.Exit(1)
	}

	udpSocketManager = server
	appLogger.Info("UDP Socket Manager initialized")
}

func initLobbyRegistry() {
	outbox = service.NewOutbox(config.Envs.MailboxSize, newLogger("OUTBOX", config.ColorYellow))

	registry, err := service.NewLobbyRegistry(
		config.Envs.RegistryConfig(outbox, newLogger("LOBBY-REGISTRY", config.ColorCyan)),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating lobby registry: %v", err))
		os.Exit(1)
	}
	lobbyRegistry = registry
	appLogger.Info("Lobby Registry initialized")
}

func initTransports() {
	api.NewUDPTransport(&api.UDPConfig{
		Socket:   udpSocketManager,
		Registry: lobbyRegistry,
		Router:   outbox,
		Logger:   newLogger("UDP", config.ColorBlue),
	})

	grpcServer = grpc.NewServer()
	err := api.RegisterNewLobbyServer(grpcServer, &api.ServerConfig{
		Registry: lobbyRegistry,
		Router:   outbox,
		Endpoint: udpSocketManager,
		Logger:   newLogger("GRPC", config.ColorMagenta),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating and Registering lobby controller: %v", err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", api.NewWSHandler(&api.WSConfig{
		Registry: lobbyRegistry,
		Router:   outbox,
		Logger:   newLogger("WS", config.ColorBlue),
	}))
	httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%v", config.Envs.ProxyIP, config.Envs.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	appLogger.Info("Transports initialized")
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	initUDPSocketManager()
	initLobbyRegistry()
	initTransports()

	defer func() {
		lobbyRegistry.StopAll()
		outbox.Close()
		udpSocketManager.Stop()
	}()

	go udpSocketManager.Serve()
	appLogger.Info("UDP Socket Manager started serving")

	go func() {
		appLogger.Info(fmt.Sprintf("Serving WebSocket at: %s/ws", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Sprintf("Serving HTTP: %v", err))
			os.Exit(1)
		}
	}()

	var err error
	addr := fmt.Sprintf("%s:%v", config.Envs.ProxyIP, config.Envs.GrpcPort)
	grpcConnListener, err = net.Listen("tcp", addr)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening tcp: %v", err))
		os.Exit(1)
	}

	go func() {
		appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", addr))
		if err := grpcServer.Serve(grpcConnListener); err != nil {
			appLogger.Error(fmt.Sprintf("Serving gRPC: %v", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	appLogger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Shutting down HTTP: %v", err))
	}
	grpcServer.GracefulStop()
}
