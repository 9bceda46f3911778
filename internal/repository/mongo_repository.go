package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HaGotHem/optines/internal/models"
)

const (
	tasksCollection     = "tasks"
	employeesCollection = "employees"
	settingsCollection  = "settings"
	countersCollection  = "counters"
)

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type taskDocument struct {
	models.Task `bson:",inline"`
	Seq         int64 `bson:"seq"`
}

type MongoTaskRepository struct {
	tasks *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{tasks: db.Collection(tasksCollection)}
}

func (r *MongoTaskRepository) LoadTasksForDate(ctx context.Context, date string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"date": date})
}

func (r *MongoTaskRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoTaskRepository) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "seq", Value: 1}})
	cursor, err := r.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, doc.Task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) GetTask(ctx context.Context, id string) (models.Task, error) {
	var doc taskDocument
	err := r.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return doc.Task, nil
}

func (r *MongoTaskRepository) AppendTask(ctx context.Context, task models.Task) error {
	return r.ImportTasks(ctx, []models.Task{task})
}

func (r *MongoTaskRepository) ImportTasks(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	base := time.Now().UnixNano()
	docs := make([]any, len(tasks))
	for i, t := range tasks {
		docs[i] = taskDocument{Task: t, Seq: base + int64(i)}
	}
	if _, err := r.tasks.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert tasks: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) RemoveTask(ctx context.Context, id string) error {
	result, err := r.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

type MongoEmployeeRepository struct {
	employees *mongo.Collection
	counters  *mongo.Collection
}

func NewMongoEmployeeRepository(db *mongo.Database) *MongoEmployeeRepository {
	return &MongoEmployeeRepository{
		employees: db.Collection(employeesCollection),
		counters:  db.Collection(countersCollection),
	}
}

func (r *MongoEmployeeRepository) LoadRoster(ctx context.Context) ([]models.Employee, error) {
	cursor, err := r.employees.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer cursor.Close(ctx)

	var roster []models.Employee
	if err := cursor.All(ctx, &roster); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return roster, nil
}

func (r *MongoEmployeeRepository) GetEmployee(ctx context.Context, id int) (models.Employee, error) {
	var e models.Employee
	err := r.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Employee{}, fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("get employee %d: %w", id, err)
	}
	return e, nil
}

func (r *MongoEmployeeRepository) nextID(ctx context.Context) (int, error) {
	var counter struct {
		Value int `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": employeesCollection},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next employee id: %w", err)
	}
	return counter.Value, nil
}

func (r *MongoEmployeeRepository) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return models.Employee{}, err
	}
	e.ID = id
	if _, err := r.employees.InsertOne(ctx, e); err != nil {
		return models.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

func (r *MongoEmployeeRepository) UpdateEmployee(ctx context.Context, e models.Employee) error {
	result, err := r.employees.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("employee %d: %w", e.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoEmployeeRepository) DeleteEmployee(ctx context.Context, id int) error {
	result, err := r.employees.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoEmployeeRepository) IncrementTasksCompleted(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.employees.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$inc": bson.M{"tasksCompleted": 1}},
	)
	if err != nil {
		return fmt.Errorf("increment tasks completed: %w", err)
	}
	return nil
}

type MongoSettingsRepository struct {
	settings *mongo.Collection
	defaults models.WorkingHours
}

func NewMongoSettingsRepository(db *mongo.Database, defaults models.WorkingHours) *MongoSettingsRepository {
	return &MongoSettingsRepository{settings: db.Collection(settingsCollection), defaults: defaults}
}

func (r *MongoSettingsRepository) GetWorkingHours(ctx context.Context) (models.WorkingHours, error) {
	var doc struct {
		Value models.WorkingHours `bson:"value"`
	}
	err := r.settings.FindOne(ctx, bson.M{"_id": workingHoursKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.defaults, nil
	}
	if err != nil {
		return models.WorkingHours{}, fmt.Errorf("get working hours: %w", err)
	}
	return doc.Value, nil
}

func (r *MongoSettingsRepository) SaveWorkingHours(ctx context.Context, wh models.WorkingHours) error {
	_, err := r.settings.UpdateOne(ctx,
		bson.M{"_id": workingHoursKey},
		bson.M{"$set": bson.M{"value": wh, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save working hours: %w", err)
	}
	return nil
}
