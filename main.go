package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MarcGrol/shopcheckout/lib/mycache"
	"github.com/MarcGrol/shopcheckout/lib/mymetrics"
	"github.com/MarcGrol/shopcheckout/lib/mypublisher"
	"github.com/MarcGrol/shopcheckout/lib/mypubsub"
	"github.com/MarcGrol/shopcheckout/lib/myqueue"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myuuid"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
	"github.com/MarcGrol/shopcheckout/services/cart"
	"github.com/MarcGrol/shopcheckout/services/checkout"
	"github.com/MarcGrol/shopcheckout/services/checkout/checkoutevents"
	"github.com/MarcGrol/shopcheckout/services/credentials"
	"github.com/MarcGrol/shopcheckout/services/credentials/credentialsevents"
	"github.com/MarcGrol/shopcheckout/services/gateway"
	"github.com/MarcGrol/shopcheckout/services/orders"
	"github.com/MarcGrol/shopcheckout/services/orders/orderevents"
	"github.com/MarcGrol/shopcheckout/services/warmup"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	currency := getenv("CURRENCY", "eur")

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	for _, topic := range []string{checkoutevents.TopicName, orderevents.TopicName, credentialsevents.TopicName} {
		err = publisher.CreateTopic(c, topic)
		if err != nil {
			log.Fatalf("Error creating topic %s: %s", topic, err)
		}
	}
	publisher.RegisterEndpoints(c, router)

	cartStore, cartStoreCleanup, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartStoreCleanup()

	cartCache, cartCacheCleanup, err := mycache.New[cart.Cart](c, os.Getenv("REDIS_ADDR"), "cart")
	if err != nil {
		log.Fatalf("Error creating cart cache: %s", err)
	}
	defer cartCacheCleanup()

	cartService := cart.NewService(cartStore, cartCache, nower)
	cart.NewWebService(cartService, currency).RegisterEndpoints(c, router)

	orderStore, orderStoreCleanup, err := mystore.New[orders.OrderRecord](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}
	defer orderStoreCleanup()

	orderService := orders.NewService(orderStore, nower, publisher)
	orders.NewWebService(orderService).RegisterEndpoints(c, router)

	vault, vaultCleanup, err := myvault.New[gateway.Token](c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}
	defer vaultCleanup()

	connectStore, connectStoreCleanup, err := mystore.New[credentials.ConnectSession](c)
	if err != nil {
		log.Fatalf("Error creating connect-session store: %s", err)
	}
	defer connectStoreCleanup()

	credentialsService, err := credentials.NewWebService(credentialsConfig(), connectStore, vault, nower, myuuid.RealUUIDer{}, publisher)
	if err != nil {
		log.Fatalf("Error creating credentials service: %s", err)
	}
	credentialsService.RegisterEndpoints(c, router)

	gatewayCfg := gatewayConfig(currency)
	gw, err := gateway.New(gatewayCfg, vault, nower, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Error creating payment gateway: %s", err)
	}
	warmup.NewWebService(vault, gatewayCfg.Provider).RegisterEndpoints(c, router)

	sessionStore, sessionStoreCleanup, err := mystore.New[checkout.Session](c)
	if err != nil {
		log.Fatalf("Error creating checkout store: %s", err)
	}
	defer sessionStoreCleanup()

	checkout.NewWebService(checkout.Config{Currency: currency}, sessionStore, cartService, orderService, gw, publisher,
		myuuid.RealUUIDer{}, nower, mymetrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)).RegisterEndpoints(c, router)

	router.Handle("/metrics", mymetrics.Handler()).Methods("GET")

	startWebServerBlocking(router)
}

func gatewayConfig(currency string) gateway.Config {
	provider := getenv("PAYMENT_PROVIDER", gateway.ProviderStripe)
	apiKey := os.Getenv("STRIPE_API_KEY")
	if provider == gateway.ProviderMollie {
		apiKey = os.Getenv("MOLLIE_API_KEY")
	}
	return gateway.Config{
		Provider:           provider,
		APIKey:             apiKey,
		Currency:           currency,
		MollieProfileID:    os.Getenv("MOLLIE_PROFILE_ID"),
		MollieTestMode:     getenvBool("MOLLIE_TEST_MODE", false),
		BreakerMaxFailures: uint32(getenvInt("BREAKER_MAX_FAILURES", 0)),
		BreakerOpenPeriod:  time.Duration(getenvInt("BREAKER_OPEN_SECONDS", 0)) * time.Second,
	}
}

func credentialsConfig() credentials.Config {
	return credentials.Config{
		gateway.ProviderStripe: {
			ClientID: os.Getenv("STRIPE_CLIENT_ID"),
			Secret:   os.Getenv("STRIPE_CLIENT_SECRET"),
		},
		gateway.ProviderMollie: {
			ClientID: os.Getenv("MOLLIE_CLIENT_ID"),
			Secret:   os.Getenv("MOLLIE_CLIENT_SECRET"),
		},
	}
}

func getenv(name string, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	return value
}

func getenvInt(name string, defaultValue int) int {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid value for %s: %s", name, value)
	}
	return i
}

func getenvBool(name string, defaultValue bool) bool {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Invalid value for %s: %s", name, value)
	}
	return b
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
