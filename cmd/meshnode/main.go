package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/loraaodv/node/aodv"
	"github.com/loraaodv/node/atlink"
	"github.com/loraaodv/node/internal/address"
	"github.com/loraaodv/node/internal/diag"
)

// defaultConfig mirrors the radio configuration hoppy's main.rs hard-codes
// for its USB-attached LoRa modules.
var defaultConfig = atlink.Config{
	Frequency:       433920000,
	Power:           5,
	Bandwidth:       9,
	SpreadingFactor: 7,
	ErrorCoding:     4,
	CRC:             true,
	HeaderMode:      atlink.HeaderExplicit,
	ReceiveMode:     atlink.ReceiveContinuous,
	FrequencyHop:    false,
	HopPeriod:       0,
	ReceiveTimeout:  3000,
	PayloadLength:   8,
	PreambleLength:  8,
}

const (
	helloInterval = 15 * time.Second
	helloTimeout  = 45 * time.Second
	metricsAddr   = ":9290"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <serial-port-path> <own-address>\n", os.Args[0])
		os.Exit(1)
	}
	portPath := os.Args[1]
	own, err := address.Parse(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid address %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}

	instanceID := diag.InstanceID()
	log := logrus.WithFields(logrus.Fields{"instance": instanceID, "address": own.String()})
	diag.LogStartup(log, instanceID)

	port, err := atlink.OpenPort(atlink.DefaultPortOptions(portPath))
	if err != nil {
		log.WithError(err).Fatal("could not open serial port")
	}
	statsPort := atlink.WrapPort(port, time.Now())

	log.WithField("config", defaultConfig.String()).Info("configuring radio")
	link, err := atlink.Open(statsPort, own, defaultConfig, log)
	if err != nil {
		log.WithError(err).Fatal("could not open AT link")
	}

	controller := aodv.NewController(link, helloInterval, helloTimeout, deliver(log), prometheus.Labels{
		"instance": instanceID,
		"address":  own.String(),
	}, log)

	prometheus.MustRegister(controller.Metrics())
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.WithError(err).Error("metrics server stopped")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("mesh node running")
	controller.Run(ctx)
	log.Info("mesh node shut down")
}

// deliver logs every locally destined DATA packet. A real application
// would plug a different callback in here; spec.md §6 defines the
// callback contract but not its consumer.
func deliver(log *logrus.Entry) aodv.DataCallback {
	return func(origin address.Address, payload []byte) {
		log.WithFields(logrus.Fields{"origin": origin.String(), "bytes": len(payload)}).Info("delivered")
	}
}
