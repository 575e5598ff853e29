package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	pkgconfig "github.com/kpmisthah/twaybastore-admin/pkg/config"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDBClient(cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

func NewProductRepository(client *dynamodb.Client, tableName string) *ProductRepository {
	return &ProductRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductExists
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// UpdateProduct replaces the whole item. The admin edit form always
// submits the complete product, so a full put keeps the write simple.
func (r *ProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, productID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ConditionExpression: aws.String("attribute_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// ListProducts scans the full table and pages in memory. The catalog is
// admin-scale (hundreds of rows); the search filter is a case-insensitive
// name match like the dashboard's search box.
func (r *ProductRepository) ListProducts(ctx context.Context, page, limit int, query string) ([]domain.Product, int64, error) {
	var products []domain.Product

	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	for {
		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan products: %w", err)
		}

		var pageItems []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &pageItems); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal products: %w", err)
		}
		products = append(products, pageItems...)

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		filtered := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), q) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	total := int64(len(products))
	start := (page - 1) * limit
	if start >= len(products) {
		return []domain.Product{}, total, nil
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end], total, nil
}

// AdjustStock atomically applies a quantity delta to the product-level
// counter or to one variant's counter. Subtractions carry a condition so
// the counter can never go negative; a failed condition surfaces as
// ErrInsufficientStock.
func (r *ProductRepository) AdjustStock(ctx context.Context, productID, variantID string, quantity int, subtract bool) (newStock int, previousStock int, err error) {
	product, err := r.GetProduct(ctx, productID)
	if err != nil {
		return 0, 0, err
	}

	stockPath := "stock"
	if variantID != "" {
		idx := -1
		for i := range product.Variants {
			if product.Variants[i].VariantID == variantID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, 0, ErrVariantNotFound
		}
		previousStock = product.Variants[idx].Stock
		stockPath = fmt.Sprintf("variants[%d].stock", idx)
	} else {
		previousStock = product.Stock
	}

	delta := expression.Plus(expression.Name(stockPath), expression.Value(quantity))
	if subtract {
		delta = expression.Minus(expression.Name(stockPath), expression.Value(quantity))
	}
	update := expression.
		Set(expression.Name(stockPath), delta).
		Set(expression.Name("updated_at"), expression.Value(time.Now()))

	builder := expression.NewBuilder().WithUpdate(update)

	// Subtract only when enough stock remains.
	if subtract {
		builder = builder.WithCondition(expression.GreaterThanEqual(
			expression.Name(stockPath),
			expression.Value(quantity),
		))
	}

	expr, err := builder.Build()
	if err != nil {
		return 0, previousStock, err
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, previousStock, ErrInsufficientStock
		}
		return 0, previousStock, err
	}

	var updated domain.Product
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, previousStock, err
	}

	if variantID != "" {
		for i := range updated.Variants {
			if updated.Variants[i].VariantID == variantID {
				return updated.Variants[i].Stock, previousStock, nil
			}
		}
		return 0, previousStock, ErrVariantNotFound
	}
	return updated.Stock, previousStock, nil
}
