package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const defaultOrdersTableName = "orders"

// OrderDynamoAPI is the subset of *dynamodb.Client used by the repository.
type OrderDynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type orderItem struct {
	ID                     string        `dynamodbav:"id"`
	Code                   string        `dynamodbav:"code"`
	VehicleID              string        `dynamodbav:"vehicle_id"`
	Status                 string        `dynamodbav:"status"`
	Parts                  []partItem    `dynamodbav:"parts"`
	Services               []serviceItem `dynamodbav:"services"`
	QuoteTotal             string        `dynamodbav:"quote_total,omitempty"`
	QuoteCreatedAt         string        `dynamodbav:"quote_created_at,omitempty"`
	CreatedAt              string        `dynamodbav:"created_at"`
	ExecutionStartedAt     string        `dynamodbav:"execution_started_at,omitempty"`
	FinishedAt             string        `dynamodbav:"finished_at,omitempty"`
	DeliveredAt            string        `dynamodbav:"delivered_at,omitempty"`
	StockState             string        `dynamodbav:"stock_state"`
	StockFailureReason     string        `dynamodbav:"stock_failure_reason,omitempty"`
	StockCorrelationID     string        `dynamodbav:"stock_correlation_id,omitempty"`
	RequiresStockReduction bool          `dynamodbav:"requires_stock_reduction"`
	Version                int64         `dynamodbav:"version"`
	UpdatedAt              string        `dynamodbav:"updated_at"`
}

type partItem struct {
	StockItemID string `dynamodbav:"stock_item_id"`
	Name        string `dynamodbav:"name"`
	UnitPrice   string `dynamodbav:"unit_price"`
	Quantity    int    `dynamodbav:"quantity"`
	Type        string `dynamodbav:"type"`
}

type serviceItem struct {
	ServiceID string `dynamodbav:"service_id"`
	Name      string `dynamodbav:"name"`
	Price     string `dynamodbav:"price"`
}

// OrderDynamoRepository persists Order aggregates in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// The whole aggregate is one item. Writes are conditional on the version
// attribute, which is the optimistic concurrency token.
type OrderDynamoRepository struct {
	ddb       OrderDynamoAPI
	tableName string
	now       func() time.Time
}

var _ interfaces.IOrderRepository = (*OrderDynamoRepository)(nil)

func NewOrderDynamoRepository(ddb OrderDynamoAPI, tableName string) *OrderDynamoRepository {
	if tableName == "" {
		tableName = getenvDefault("ORDERS_TABLE", defaultOrdersTableName)
	}
	return &OrderDynamoRepository{
		ddb:       ddb,
		tableName: tableName,
		now:       time.Now,
	}
}

func (r *OrderDynamoRepository) Create(ctx context.Context, o *entities.Order) error {
	av, err := attributevalue.MarshalMap(toOrderItem(o.Snapshot(), r.now()))
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return interfaces.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *OrderDynamoRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id.String()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return fromOrderItem(it)
}

func (r *OrderDynamoRepository) Update(ctx context.Context, o *entities.Order) (*entities.Order, error) {
	snap := o.Snapshot()
	expected := snap.Version
	snap.Version = expected + 1

	av, err := attributevalue.MarshalMap(toOrderItem(snap, r.now()))
	if err != nil {
		return nil, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, interfaces.ErrOrderVersionConflict
		}
		return nil, err
	}
	return entities.RestoreOrder(snap)
}

// ListAwaitingStockWithDeadline scans with the four saga conditions as a
// filter. execution_started_at uses a sortable layout so <= works on strings.
func (r *OrderDynamoRepository) ListAwaitingStockWithDeadline(ctx context.Context, cutoff time.Time) ([]*entities.Order, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		FilterExpression: aws.String(
			"#status = :status AND #requires = :requires AND #stock_state = :stock_state AND #started <= :cutoff",
		),
		ExpressionAttributeNames: map[string]string{
			"#status":      "status",
			"#requires":    "requires_stock_reduction",
			"#stock_state": "stock_state",
			"#started":     "execution_started_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":      &types.AttributeValueMemberS{Value: string(entities.OrderStatusEmExecucao)},
			":requires":    &types.AttributeValueMemberBOOL{Value: true},
			":stock_state": &types.AttributeValueMemberS{Value: string(entities.StockInteractionAwaiting)},
			":cutoff":      &types.AttributeValueMemberS{Value: formatTime(cutoff)},
		},
		ConsistentRead: aws.Bool(true),
	}

	var orders []*entities.Order
	paginator := dynamodb.NewScanPaginator(r.ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []orderItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			o, err := fromOrderItem(it)
			if err != nil {
				return nil, err
			}
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func toOrderItem(s entities.OrderSnapshot, now time.Time) orderItem {
	it := orderItem{
		ID:                 s.ID.String(),
		Code:               s.Code,
		VehicleID:          s.VehicleID.String(),
		Status:             string(s.Status),
		Parts:              make([]partItem, 0, len(s.Parts)),
		Services:           make([]serviceItem, 0, len(s.Services)),
		CreatedAt:          formatTime(s.CreatedAt),
		ExecutionStartedAt: formatTimePtr(s.ExecutionStartedAt),
		FinishedAt:         formatTimePtr(s.FinishedAt),
		DeliveredAt:        formatTimePtr(s.DeliveredAt),
		StockState:         string(s.StockState),
		StockFailureReason: string(s.StockFailureReason),
		StockCorrelationID: s.StockCorrelationID,
		Version:            s.Version,
		UpdatedAt:          formatTime(now),

		RequiresStockReduction: requiresStockReduction(s),
	}
	for _, p := range s.Parts {
		it.Parts = append(it.Parts, partItem{
			StockItemID: p.StockItemID.String(),
			Name:        p.Name,
			UnitPrice:   p.UnitPrice.String(),
			Quantity:    p.Quantity,
			Type:        string(p.Type),
		})
	}
	for _, sv := range s.Services {
		it.Services = append(it.Services, serviceItem{
			ServiceID: sv.ServiceID.String(),
			Name:      sv.Name,
			Price:     sv.Price.String(),
		})
	}
	if s.Quote != nil {
		it.QuoteTotal = s.Quote.Total.String()
		it.QuoteCreatedAt = formatTime(s.Quote.CreatedAt)
	}
	return it
}

func fromOrderItem(it orderItem) (*entities.Order, error) {
	s, err := orderItemSnapshot(it)
	if err != nil {
		return nil, fmt.Errorf("decode order %s: %w", it.ID, err)
	}
	return entities.RestoreOrder(s)
}

func orderItemSnapshot(it orderItem) (entities.OrderSnapshot, error) {
	var (
		s   entities.OrderSnapshot
		err error
	)
	if s.ID, err = uuid.Parse(it.ID); err != nil {
		return s, err
	}
	if s.VehicleID, err = uuid.Parse(it.VehicleID); err != nil {
		return s, err
	}
	if s.CreatedAt, err = parseTime(it.CreatedAt); err != nil {
		return s, err
	}
	if s.ExecutionStartedAt, err = parseTimePtr(it.ExecutionStartedAt); err != nil {
		return s, err
	}
	if s.FinishedAt, err = parseTimePtr(it.FinishedAt); err != nil {
		return s, err
	}
	if s.DeliveredAt, err = parseTimePtr(it.DeliveredAt); err != nil {
		return s, err
	}
	s.Code = it.Code
	s.Status = entities.OrderStatus(it.Status)
	s.StockState = entities.StockInteractionState(it.StockState)
	s.StockFailureReason = entities.StockFailureReason(it.StockFailureReason)
	s.StockCorrelationID = it.StockCorrelationID
	s.Version = it.Version

	for _, p := range it.Parts {
		id, err := uuid.Parse(p.StockItemID)
		if err != nil {
			return s, err
		}
		price, err := parseDecimal(p.UnitPrice)
		if err != nil {
			return s, err
		}
		s.Parts = append(s.Parts, entities.PartItem{
			StockItemID: id,
			Name:        p.Name,
			UnitPrice:   price,
			Quantity:    p.Quantity,
			Type:        entities.PartType(p.Type),
		})
	}
	for _, sv := range it.Services {
		id, err := uuid.Parse(sv.ServiceID)
		if err != nil {
			return s, err
		}
		price, err := parseDecimal(sv.Price)
		if err != nil {
			return s, err
		}
		s.Services = append(s.Services, entities.ServiceItem{ServiceID: id, Name: sv.Name, Price: price})
	}
	if it.QuoteTotal != "" {
		total, err := parseDecimal(it.QuoteTotal)
		if err != nil {
			return s, err
		}
		createdAt, err := parseTime(it.QuoteCreatedAt)
		if err != nil {
			return s, err
		}
		s.Quote = &entities.Quote{Total: total, CreatedAt: createdAt}
	}
	return s, nil
}
