package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order-tracking-service/internal/config"
	"order-tracking-service/internal/controller"
	"order-tracking-service/internal/middleware"
	"order-tracking-service/internal/rabbit"
	"order-tracking-service/internal/repository"
	"order-tracking-service/internal/service"
	"order-tracking-service/internal/ws"
)

func main() {
	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDBName)

	// Repositorio y servicios
	repo := repository.NewMongoOrderRepository(db)
	orderService := service.NewOrderTrackingService(repo)
	authService := service.NewAuthService(cfg.AuthURL)

	// Núcleo realtime: registro de conexiones, broadcaster, dispatcher y
	// monitor de liveness. El registro es una instancia propia del proceso,
	// inyectada a todo el que la necesita.
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry, orderService)
	dispatcher := ws.NewDispatcher(registry, orderService, broadcaster)
	wsHandler := ws.NewHandler(registry, dispatcher)
	monitor := ws.NewLivenessMonitor(registry, time.Duration(cfg.HeartbeatSeconds)*time.Second)

	// El monitor muere junto con el proceso (SIGINT/SIGTERM)
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go monitor.Run(runCtx)

	// Handlers
	ctrl := controller.NewOrderController(orderService, broadcaster)

	// Router
	r := gin.Default()

	// Canal persistente, común a todos los roles
	r.GET("/ws", wsHandler.Serve)

	// Rutas públicas
	r.POST("/status/init", ctrl.InitOrder)

	// Rutas protegidas (requieren token)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.PATCH("/orders/:orderId/status", ctrl.UpdateStatus)
	auth.PATCH("/orders/:orderId/courier", ctrl.AssignCourier)
	auth.GET("/orders/mine", ctrl.GetMyOrders)
	auth.GET("/orders/:orderId/latest", ctrl.GetLatestStatus)

	// Rutas admin
	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders/all", ctrl.GetAllOrders)
	admin.GET("/orders/state/:state", ctrl.GetAllOrdersByState)

	// Conexión a RabbitMQ
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("Error conectando a RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("Error creando canal en RabbitMQ: %v", err)
	}

	rabbit.SetupConsumers(ch, orderService, broadcaster)

	// Ejecutar servidor
	log.Printf("Order Tracking Service ejecutándose en puerto %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
