package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/erpbridge/go-ws-proxy/companies"
	"github.com/erpbridge/go-ws-proxy/creditbus"
	"github.com/erpbridge/go-ws-proxy/internal/config"
	"github.com/erpbridge/go-ws-proxy/proxy"
	"github.com/erpbridge/go-ws-proxy/server"
	"github.com/erpbridge/go-ws-proxy/server/callersession"
	"github.com/erpbridge/go-ws-proxy/wsclient"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	handler, err := buildServer(c)
	if err != nil {
		return fmt.Errorf("buildServer: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config) (*server.Server, error) {
	companyRepo, err := companies.NewFileRepo(c.GetCompaniesFile())
	if err != nil {
		return nil, fmt.Errorf("company registry: %w", err)
	}

	gateway := wsclient.NewGateway(wsclient.New(
		wsclient.WithTimeout(c.GetVendorTimeout()),
		wsclient.WithLogger(zlog.Logger),
	))

	bus, err := creditbus.New(
		proxy.CreditSnapshot(companyRepo, gateway),
		creditbus.WithBuffer(c.GetStreamBuffer()),
		creditbus.WithLogger(zlog.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("credit bus: %w", err)
	}

	memberships := server.NewCompanyMemberships()

	proxyService, err := proxy.NewService(
		proxy.Repos{Companies: companyRepo},
		memberships,
		gateway,
		bus,
		proxy.WithLogger(zlog.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("proxy service: %w", err)
	}

	return server.New(c, proxyService, bus, callersession.NewInMemoryRepo(), memberships)
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
