package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var MongoConn *mongo.Client

var DBName string = "attendance-core-db"
var EmployeeCollection string = "employees"
var CenterCollection string = "centers"
var AttendanceCollection string = "attendance"
var AdminCollection string = "admins"
var HolidayCollection string = "holidays"
var TemplateCollection string = "templates"

func MongoConnect() {
	mongoURI := os.Getenv("MONGOSTRING")
	if mongoURI == "" {
		log.Fatal("MONGOSTRING is not set in the environment")
	}

	client, err := mongo.NewClient(options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to create MongoDB client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	log.Println("Connected to MongoDB!")
	MongoConn = client
}

// InitIndexes creates the unique indexes the integrity checks rely on.
// Duplicate-key errors coming back from these indexes are the canonical
// conflict signal for double check-ins and double device bindings; the
// application-level checks are only a fast path.
func InitIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	attendance := GetCollection(AttendanceCollection)
	_, err := attendance.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_employee_date"),
	})
	if err != nil {
		log.Fatalf("Failed to create attendance (employee_id, date) index: %v", err)
	}

	employees := GetCollection(EmployeeCollection)
	_, err = employees.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "device_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("uniq_device_id").
			// Partial so unbound employees (no device_id field) do not collide.
			SetPartialFilterExpression(bson.M{"device_id": bson.M{"$exists": true}}),
	})
	if err != nil {
		log.Fatalf("Failed to create employees device_id index: %v", err)
	}

	admins := GetCollection(AdminCollection)
	_, err = admins.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	if err != nil {
		log.Fatalf("Failed to create admins username index: %v", err)
	}

	holidays := GetCollection(HolidayCollection)
	_, err = holidays.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_holiday_date"),
	})
	if err != nil {
		log.Fatalf("Failed to create holidays date index: %v", err)
	}

	log.Println("MongoDB indexes ready")
}

func GetCollection(collectionName string) *mongo.Collection {
	if MongoConn == nil {
		log.Fatal("MongoDB client is not initialized. Call MongoConnect() first")
	}
	return MongoConn.Database(DBName).Collection(collectionName)
}

func DisconnectDB() {
	if MongoConn != nil {
		if err := MongoConn.Disconnect(context.Background()); err != nil {
			log.Fatalf("Error disconnecting from MongoDB: %v", err)
		}
		log.Println("Disconnected from MongoDB")
	}
}
