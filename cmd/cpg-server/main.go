// Command cpg-server opens an existing SQLite-backed or in-memory store
// and serves it over the remote driver's wire protocol until signaled
// to shut down, with graceful HTTP shutdown on SIGINT/SIGTERM (spec
// §4.14), grounded on the teacher's server/main.go process lifecycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jvmcpg/internal/driver/remotedriver"
	"jvmcpg/internal/driverfactory"
)

func main() {
	driverSpec := flag.String("driver", "", "Driver backend to serve: memory, or sqlite:<path>. Can be set via DRIVER env.")
	port := flag.String("port", "", "HTTP port (default 8080). Can be set via PORT env.")
	flag.Parse()

	if *driverSpec == "" {
		*driverSpec = os.Getenv("DRIVER")
	}
	if *driverSpec == "" {
		*driverSpec = "memory"
	}
	if *port == "" {
		*port = os.Getenv("PORT")
	}
	if *port == "" {
		*port = "8080"
	}

	d, closeDriver, err := driverfactory.Open(*driverSpec)
	if err != nil {
		log.Fatalf("driver: %v", err)
	}
	defer func() { _ = closeDriver() }()

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      remotedriver.NewServer(d).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Listening on http://localhost:%s (driver=%s)", *port, *driverSpec)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		os.Exit(1)
	}
	log.Println("Bye")
}
