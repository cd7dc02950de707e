package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/models"
)

// OrderStore is the persistence port for orders: create and read only.
// Orders are never updated or deleted.
type OrderStore interface {
	SaveOrder(ctx context.Context, order models.Order) error
	GetOrder(ctx context.Context, userName, orderDate string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// DynamoOrderStore keeps orders in a DynamoDB table with composite key
// (userName, orderDate).
type DynamoOrderStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoOrderStore(client *dynamodb.Client, table string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, table: table}
}

type ddbOrderItem struct {
	ProductID string `dynamodbav:"productId"`
	Name      string `dynamodbav:"name"`
	Price     string `dynamodbav:"price"`
	Quantity  int    `dynamodbav:"quantity"`
	Image     string `dynamodbav:"image,omitempty"`
}

type ddbOrder struct {
	UserName   string         `dynamodbav:"userName"`
	OrderDate  string         `dynamodbav:"orderDate"`
	RequestID  string         `dynamodbav:"requestId,omitempty"`
	FirstName  string         `dynamodbav:"firstName,omitempty"`
	LastName   string         `dynamodbav:"lastName,omitempty"`
	Email      string         `dynamodbav:"email,omitempty"`
	TotalPrice string         `dynamodbav:"totalPrice"`
	Items      []ddbOrderItem `dynamodbav:"items"`
	Status     string         `dynamodbav:"status"`
}

func toDDBOrder(order models.Order) ddbOrder {
	return ddbOrder{
		UserName:   order.UserName,
		OrderDate:  order.OrderDate,
		RequestID:  order.RequestID,
		FirstName:  order.FirstName,
		LastName:   order.LastName,
		Email:      order.Email,
		TotalPrice: order.TotalPrice.String(),
		Status:     string(order.Status),
		Items: lo.Map(order.Items, func(it models.OrderItem, _ int) ddbOrderItem {
			return ddbOrderItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price.String(),
				Quantity:  it.Quantity,
				Image:     it.Image,
			}
		}),
	}
}

func fromDDBOrder(do ddbOrder) (models.Order, error) {
	total, err := decimal.NewFromString(do.TotalPrice)
	if err != nil {
		return models.Order{}, fmt.Errorf("totalPrice[%s] is not valid: %w", do.TotalPrice, err)
	}
	status, err := models.ToOrderStatus(do.Status)
	if err != nil {
		return models.Order{}, fmt.Errorf("status[%s]: %w", do.Status, err)
	}

	items := make([]models.OrderItem, 0, len(do.Items))
	for _, it := range do.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return models.Order{}, fmt.Errorf("price[%s] is not valid: %w", it.Price, err)
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	return models.Order{
		UserName:   do.UserName,
		OrderDate:  do.OrderDate,
		RequestID:  do.RequestID,
		FirstName:  do.FirstName,
		LastName:   do.LastName,
		Email:      do.Email,
		TotalPrice: total,
		Items:      items,
		Status:     status,
	}, nil
}

func (s *DynamoOrderStore) SaveOrder(ctx context.Context, order models.Order) error {
	item, err := attributevalue.MarshalMap(toDDBOrder(order))
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &s.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (s *DynamoOrderStore) GetOrder(ctx context.Context, userName, orderDate string) (*models.Order, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"userName":  userName,
		"orderDate": orderDate,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &s.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var do ddbOrder
	if err := attributevalue.UnmarshalMap(out.Item, &do); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	order, err := fromDDBOrder(do)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders scans the whole table. Debug/admin path; order volume is not a
// concern here.
func (s *DynamoOrderStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{TableName: &s.table})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, item := range page.Items {
			var do ddbOrder
			if err := attributevalue.UnmarshalMap(item, &do); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			order, err := fromDDBOrder(do)
			if err != nil {
				return nil, err
			}
			orders = append(orders, order)
		}
	}
	return orders, nil
}
