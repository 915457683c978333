package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	nodesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agesim_nodes",
		Help: "Current total node count across every section.",
	})
	sectionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agesim_sections",
		Help: "Current number of partitions in the network.",
	})
	mergesCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agesim_cumulative_merges",
		Help: "Cumulative number of section merges observed so far.",
	})
	splitsCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agesim_cumulative_splits",
		Help: "Cumulative number of section splits observed so far.",
	})
	relocationsCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agesim_cumulative_relocations",
		Help: "Cumulative number of relocation attempts initiated so far.",
	})
	rejectionsCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agesim_cumulative_rejections",
		Help: "Cumulative number of join rejections observed so far.",
	})
)

func init() {
	prometheus.MustRegister(nodesGauge, sectionsGauge, mergesCounter, splitsCounter, relocationsCounter, rejectionsCounter)
}

// metrics starts the metrics/debug HTTP server. It runs for the lifetime of
// the process and is started on its own goroutine by main.
func metrics(addr string) {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintln(w, "Hi, I'm an agesim metrics and debugging server!")
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: r}
	log.Printf("Starting metrics server at: %v", addr)
	log.Fatal(srv.ListenAndServe())
}
