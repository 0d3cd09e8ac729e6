package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect abre el cliente de MongoDB y verifica la conexión con un ping al primario
func Connect(ctx context.Context, uri string, timeout time.Duration, log zerolog.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetAppName("fleximart-catalog")

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info().Str("component", "database").Msg("connected to MongoDB")
	return client, nil
}

// Ping mide la latencia contra el primario
func Ping(ctx context.Context, client *mongo.Client, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Disconnect cierra el cliente con un plazo acotado
func Disconnect(client *mongo.Client, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Str("component", "database").Msg("error disconnecting from MongoDB")
	}
}
