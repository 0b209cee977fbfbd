package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pollhive/api.pollhive.dev/configure"
	"github.com/pollhive/api.pollhive.dev/directory"
	"github.com/pollhive/api.pollhive.dev/poll"
	"github.com/pollhive/api.pollhive.dev/redis"
	"github.com/pollhive/api.pollhive.dev/server"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.Infoln("Application Starting...")

	configCode := configure.Config.GetInt("exit_code")
	if configCode > 125 || configCode < 0 {
		log.Warnf("Invalid exit code specified in config (%v), using 0 as new exit code.", configCode)
		configCode = 0
	}

	rdb, err := redis.Setup(configure.Config.GetString("redis_uri"))
	if err != nil {
		log.Fatalf("redis, err=%v", err)
	}

	dir, err := directory.Load(configure.Config.GetString("users_file"))
	if err != nil {
		log.Fatalf("directory, err=%v", err)
	}

	svc := poll.NewService(poll.NewRepository(rdb, dir))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	s := server.NewServer(svc, dir)

	go func() {
		sig := <-c
		log.Infof("sig=%v, gracefully shutting down...", sig)
		start := time.Now().UnixNano()

		wg := sync.WaitGroup{}
		wg.Add(1)

		go func() {
			defer wg.Done()
			if err := s.Shutdown(); err != nil {
				log.Errorf("server, shutdown=%v", err)
			}
			if err := rdb.Close(); err != nil {
				log.Errorf("redis, shutdown=%v", err)
			}
		}()

		wg.Wait()

		log.Infof("Shutdown took, %.2fms", float64(time.Now().UnixNano()-start)/10e5)
		os.Exit(configCode)
	}()

	log.Infoln("Application Started.")

	select {}
}
