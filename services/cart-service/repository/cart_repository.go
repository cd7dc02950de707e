package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/models"
)

// CartStore is the persistence port for carts. GetCart returns nil without
// error when no cart exists; DeleteCart succeeds whether or not a cart
// exists.
type CartStore interface {
	GetCart(ctx context.Context, userName string) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userName string) error
}

// DynamoCartStore stores carts in a DynamoDB table keyed by userName.
type DynamoCartStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoCartStore(client *dynamodb.Client, table string) *DynamoCartStore {
	return &DynamoCartStore{client: client, table: table}
}

type ddbCartItem struct {
	ProductID string `dynamodbav:"productId"`
	Name      string `dynamodbav:"name"`
	Price     string `dynamodbav:"price"`
	Quantity  int    `dynamodbav:"quantity"`
	Image     string `dynamodbav:"image,omitempty"`
}

type ddbCart struct {
	UserName string        `dynamodbav:"userName"`
	Items    []ddbCartItem `dynamodbav:"items"`
}

func toDDBCart(cart models.Cart) ddbCart {
	return ddbCart{
		UserName: cart.UserName,
		Items: lo.Map(cart.Items, func(it models.CartItem, _ int) ddbCartItem {
			return ddbCartItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price.String(),
				Quantity:  it.Quantity,
				Image:     it.Image,
			}
		}),
	}
}

func fromDDBCart(dc ddbCart) (models.Cart, error) {
	items := make([]models.CartItem, 0, len(dc.Items))
	for _, it := range dc.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return models.Cart{}, fmt.Errorf("price[%s] is not valid: %w", it.Price, err)
		}
		items = append(items, models.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return models.Cart{UserName: dc.UserName, Items: items}, nil
}

func (s *DynamoCartStore) GetCart(ctx context.Context, userName string) (*models.Cart, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"userName": userName})
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

	var dc ddbCart
	if err := attributevalue.UnmarshalMap(out.Item, &dc); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	cart, err := fromDDBCart(dc)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *DynamoCartStore) ListCarts(ctx context.Context) ([]models.Cart, error) {
	var carts []models.Cart
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{TableName: &s.table})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, item := range page.Items {
			var dc ddbCart
			if err := attributevalue.UnmarshalMap(item, &dc); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			cart, err := fromDDBCart(dc)
			if err != nil {
				return nil, err
			}
			carts = append(carts, cart)
		}
	}
	return carts, nil
}

func (s *DynamoCartStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	item, err := attributevalue.MarshalMap(toDDBCart(*cart))
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &s.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (s *DynamoCartStore) DeleteCart(ctx context.Context, userName string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"userName": userName})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	// DeleteItem on a missing key is a no-op, which is exactly the
	// idempotency DeleteCart promises.
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &s.table, Key: key}); err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	return nil
}
