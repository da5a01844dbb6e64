package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onestopcentre/cybercrime-api/models"
)

const caseName = "cases"

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Case, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Case, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error)
	CountDocuments(context.Context, interface{}) (int64, error)
	NextCaseNumber(context.Context, int) (string, error)
	EnsureIndexes(context.Context) error
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Case, error) {
	cs := &models.Case{}
	err := c.db.Collection(caseName).FindOne(ctx, filter, opts...).Decode(&cs)
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *caseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Case, error) {
	var cases []models.Case
	cr, err := c.db.Collection(caseName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&cases)
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *caseDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(caseName).InsertOne(ctx, document, opts...)
}

func (c *caseDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return c.db.Collection(caseName).UpdateOne(ctx, filter, update, opts...)
}

func (c *caseDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(caseName).CountDocuments(ctx, filter)
}

// EnsureIndexes creates the unique caseNumber index that backstops
// NextCaseNumber's count-then-insert allocation.
func (c *caseDatabase) EnsureIndexes(ctx context.Context) error {
	return c.db.Collection(caseName).CreateUniqueIndex(ctx, "caseNumber")
}

// NextCaseNumber allocates the next sequential case number for the given
// year, CR-<year>-<4-digit sequence>. The count-then-insert scheme matches the
// intake form's numbering; the unique caseNumber index from EnsureIndexes
// turns a concurrent double-allocation into a duplicate-key insert the
// create handler retries.
func (c *caseDatabase) NextCaseNumber(ctx context.Context, year int) (string, error) {
	prefix := fmt.Sprintf("CR-%d-", year)
	n, err := c.CountDocuments(ctx, bson.M{"caseNumber": bson.M{"$regex": "^" + prefix}})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}
