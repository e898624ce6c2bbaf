package cloud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// DynamoAPI is the subset of the DynamoDB client the record store uses.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// counterID is the reserved item holding the id sequence.
const counterID = 0

// DynamoStore keeps growth records in a DynamoDB table keyed by numeric id.
type DynamoStore struct {
	svc   DynamoAPI
	table string
}

// NewDynamoStore creates a DynamoDB-backed record store
func NewDynamoStore(ctx context.Context, region, table string) (*DynamoStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewDynamoStoreWithClient(dynamodb.NewFromConfig(cfg), table), nil
}

func NewDynamoStoreWithClient(svc DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{svc: svc, table: table}
}

// dynamoRecord is the item layout; dates are stored as YYYY-MM-DD strings.
type dynamoRecord struct {
	ID            int64   `dynamodbav:"id"`
	Date          string  `dynamodbav:"date"`
	HeightCM      float64 `dynamodbav:"height_cm"`
	WeightKG      float64 `dynamodbav:"weight_kg"`
	SleepHours    float64 `dynamodbav:"sleep_hours"`
	FormulaML     int     `dynamodbav:"formula_ml"`
	DiaperChanges int     `dynamodbav:"diaper_changes"`
	HospitalVisit string  `dynamodbav:"hospital_visit"`
	Note          string  `dynamodbav:"note"`
}

func (r dynamoRecord) toDomain() domain.GrowthRecord {
	// an unparseable date is kept as the zero time; analytics skip such rows
	date, _ := domain.ParseDay(r.Date)
	return domain.GrowthRecord{
		ID:   r.ID,
		Date: date,
		RecordFields: domain.RecordFields{
			HeightCM:      r.HeightCM,
			WeightKG:      r.WeightKG,
			SleepHours:    r.SleepHours,
			FormulaML:     r.FormulaML,
			DiaperChanges: r.DiaperChanges,
			HospitalVisit: r.HospitalVisit,
			Note:          r.Note,
		},
	}
}

func idKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

// SelectAll scans the table and returns records ordered by date
func (s *DynamoStore) SelectAll(ctx context.Context) ([]domain.GrowthRecord, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("id > :counter"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":counter": &types.AttributeValueMemberN{Value: strconv.Itoa(counterID)},
		},
	}

	out := []domain.GrowthRecord{}
	paginator := dynamodb.NewScanPaginator(s.svc, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &domain.StoreError{Op: "select", Err: fmt.Errorf("failed to scan DynamoDB: %w", err)}
		}
		var items []dynamoRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, &domain.StoreError{Op: "select", Err: fmt.Errorf("failed to unmarshal records: %w", err)}
		}
		for _, it := range items {
			out = append(out, it.toDomain())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Insert allocates the next id from the counter item and stores the record
func (s *DynamoStore) Insert(ctx context.Context, date time.Time, f domain.RecordFields) (domain.GrowthRecord, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return domain.GrowthRecord{}, &domain.StoreError{Op: "insert", Err: err}
	}

	item, err := attributevalue.MarshalMap(dynamoRecord{
		ID:            id,
		Date:          domain.Day(date).Format(domain.DateLayout),
		HeightCM:      f.HeightCM,
		WeightKG:      f.WeightKG,
		SleepHours:    f.SleepHours,
		FormulaML:     f.FormulaML,
		DiaperChanges: f.DiaperChanges,
		HospitalVisit: f.HospitalVisit,
		Note:          f.Note,
	})
	if err != nil {
		return domain.GrowthRecord{}, &domain.StoreError{Op: "insert", Err: fmt.Errorf("failed to marshal record: %w", err)}
	}

	_, err = s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return domain.GrowthRecord{}, &domain.StoreError{Op: "insert", ID: id, Err: fmt.Errorf("failed to put item in DynamoDB: %w", err)}
	}
	return domain.GrowthRecord{ID: id, Date: domain.Day(date), RecordFields: f}, nil
}

func (s *DynamoStore) nextID(ctx context.Context) (int64, error) {
	out, err := s.svc.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              idKey(counterID),
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}
	var seq int64
	if err := attributevalue.Unmarshal(out.Attributes["seq"], &seq); err != nil {
		return 0, fmt.Errorf("failed to read id sequence: %w", err)
	}
	return seq, nil
}

// Update overwrites every editable field of an existing record
func (s *DynamoStore) Update(ctx context.Context, id int64, f domain.RecordFields) error {
	values, err := attributevalue.MarshalMap(map[string]any{
		":h":  f.HeightCM,
		":w":  f.WeightKG,
		":s":  f.SleepHours,
		":f":  f.FormulaML,
		":d":  f.DiaperChanges,
		":hv": f.HospitalVisit,
		":n":  f.Note,
	})
	if err != nil {
		return &domain.StoreError{Op: "update", ID: id, Err: err}
	}

	_, err = s.svc.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key:       idKey(id),
		UpdateExpression: aws.String("SET height_cm = :h, weight_kg = :w, sleep_hours = :s, " +
			"formula_ml = :f, diaper_changes = :d, hospital_visit = :hv, note = :n"),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: values,
	})
	return storeErr("update", id, err)
}

// Delete removes a record by id
func (s *DynamoStore) Delete(ctx context.Context, id int64) error {
	_, err := s.svc.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	return storeErr("delete", id, err)
}

func storeErr(op string, id int64, err error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return &domain.StoreError{Op: op, ID: id, Err: domain.ErrNotFound}
	}
	return &domain.StoreError{Op: op, ID: id, Err: fmt.Errorf("failed to %s item in DynamoDB: %w", op, err)}
}
