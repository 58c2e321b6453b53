// Package lowstock alerts product staff when a product's stock drops to the
// restock threshold.
package lowstock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pankajredekar/shopadmin/internal/eventengine"
	"github.com/pankajredekar/shopadmin/internal/mailer"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"gorm.io/gorm"
)

// Threshold is the stock level at or below which an alert fires
const Threshold = 5

// EventLowStock carries one Alert per recipient
const EventLowStock eventengine.EventName = "product.low_stock"

const (
	subject         = "Low Stock Alert"
	deliveryTimeout = 30 * time.Second
)

// ShouldNotify decides on the stock values before and after an update that
// included the stock field.
func ShouldNotify(before, after int) bool {
	return before != after && after <= Threshold
}

// RecipientFinder lists the users that receive low stock alerts
type RecipientFinder interface {
	Recipients(ctx context.Context) ([]models.User, error)
}

// Store finds every user whose role may edit or delete products
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Recipients(ctx context.Context) ([]models.User, error) {
	roles := permission.RolesWithAny(permission.EditProducts, permission.DeleteProducts)
	if len(roles) == 0 {
		return nil, nil
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find low stock recipients: %w", err)
	}
	return users, nil
}

// Alert is a single pending low stock mail
type Alert struct {
	ProductID     uint
	ProductName   string
	CurrentStock  int
	Recipient     string
	RecipientName string
}

// Notifier turns a qualifying stock change into one alert per recipient.
// Alerts are published on the event engine once Listen has been called and
// delivered inline otherwise.
type Notifier struct {
	finder    RecipientFinder
	mail      mailer.Mailer
	appURL    string
	publisher eventengine.Publisher
}

func NewNotifier(finder RecipientFinder, mail mailer.Mailer, appURL string) *Notifier {
	return &Notifier{
		finder: finder,
		mail:   mail,
		appURL: strings.TrimRight(appURL, "/"),
	}
}

// Listen registers the alert event on engine and starts the goroutine that
// mails published alerts. The goroutine ends when the engine closes its
// channel on shutdown.
func (n *Notifier) Listen(engine eventengine.SubscribeRegisterPublisher, wg *sync.WaitGroup) error {
	if engine == nil || wg == nil {
		return errors.New("lowstock: engine and wait group are required")
	}

	engine.RegisterEvents(EventLowStock)

	inbox := make(chan any, 20)
	if err := engine.Subscribe(EventLowStock, &eventengine.Subscriber{
		Name:      "lowstock-mailer",
		AddressCh: inbox,
	}); err != nil {
		return fmt.Errorf("failed to subscribe low stock mailer: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for payload := range inbox {
			alert, ok := payload.(Alert)
			if !ok {
				log.Printf("lowstock: unexpected payload %T", payload)
				continue
			}
			n.deliver(alert)
		}
	}()

	n.publisher = engine
	return nil
}

// NotifyLowStock dispatches alerts for product when ShouldNotify(before,
// after) holds and returns how many were dispatched. Failures are logged and
// never returned.
func (n *Notifier) NotifyLowStock(ctx context.Context, product *models.Product, before, after int) int {
	if product == nil || !ShouldNotify(before, after) {
		return 0
	}

	recipients, err := n.finder.Recipients(ctx)
	if err != nil {
		log.Printf("lowstock: product_id=%d: %v", product.ID, err)
		return 0
	}

	dispatched := 0
	for _, user := range recipients {
		alert := Alert{
			ProductID:     product.ID,
			ProductName:   product.Name,
			CurrentStock:  after,
			Recipient:     user.Email,
			RecipientName: user.Name,
		}

		if n.publisher == nil {
			n.deliver(alert)
			dispatched++
			continue
		}

		if err := n.publisher.Publish(&eventengine.Event{Name: EventLowStock, Payload: alert}); err != nil {
			log.Printf("lowstock: failed to queue alert product_id=%d recipient=%s: %v", alert.ProductID, alert.Recipient, err)
			continue
		}
		dispatched++
	}
	return dispatched
}

func (n *Notifier) deliver(alert Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := n.mail.Send(ctx, n.message(alert)); err != nil {
		log.Printf("lowstock: delivery failed product_id=%d product_name=%q current_stock=%d recipient=%s: %v",
			alert.ProductID, alert.ProductName, alert.CurrentStock, alert.Recipient, err)
		return
	}
	log.Printf("lowstock: alert sent product_id=%d product_name=%q current_stock=%d recipient=%s",
		alert.ProductID, alert.ProductName, alert.CurrentStock, alert.Recipient)
}

func (n *Notifier) message(alert Alert) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", alert.RecipientName)
	fmt.Fprintf(&b, "The product %s is running low on stock.\n", alert.ProductName)
	fmt.Fprintf(&b, "Current stock: %d\n\n", alert.CurrentStock)
	fmt.Fprintf(&b, "View Product: %s/products/%d\n\n", n.appURL, alert.ProductID)
	b.WriteString("Please update the inventory as soon as possible.\n")

	return mailer.Message{
		To:      alert.Recipient,
		Subject: subject,
		Body:    b.String(),
	}
}
