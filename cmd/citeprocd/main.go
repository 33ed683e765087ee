package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("address", "localhost:8080", "address to listen on")
	flag.Parse()

	log := logrus.StandardLogger()
	store := newSessionStore(log)
	router := newRouter(store)

	logged := handlers.CombinedLoggingHandler(log.Writer(), router)
	log.WithField("address", *addr).Info("citeprocd listening")
	if err := http.ListenAndServe(*addr, logged); err != nil {
		log.WithError(err).Fatal("citeprocd exited")
	}
}
