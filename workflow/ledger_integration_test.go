package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// End-to-end posting regression: order debit, payment credit, replay
// verification and the oversell guard against real MySQL + Redis.
func TestLedgerPosting_EndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDR", fmt.Sprintf("127.0.0.1:%s", redisPort))
	config.ConnectRedis()

	db := openTestDB(t, mysqlPort)
	config.SetDB(db)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if _, err := models.UpdateSettings(ctx, &models.NewSettings{
		MonthlyInterestRate:   decimal.NewFromInt(2),
		ShippingFreeThreshold: decimal.NewFromInt(100000),
		CurrencyRates: []models.NewCurrencyRate{
			{Code: pricing.CurrencyUSD, Buy: decimal.NewFromInt(41), Sell: decimal.NewFromFloat(41.5)},
		},
	}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	item, err := models.CreateInventoryItem(ctx, &models.NewInventoryItem{
		Name:         "Bracket",
		ItemCode:     "BRK-1",
		Quantity:     10,
		UnitPrice:    decimal.NewFromInt(100),
		Currency:     pricing.CurrencyTRY,
		PurchaseType: pricing.PurchaseTypeCash,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	tree, err := models.CreateProductTree(ctx, &models.NewProductTree{
		Name:       "Bracket kit",
		Components: []models.NewProductTreeComponent{{InventoryItemId: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create tree: %v", err)
	}

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:             "Wall mount",
		Category:         "mounting",
		ProductTreeId:    &tree.ID,
		MarginPercentage: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	product, err = models.RecalculateProductPrice(ctx, product.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	// 2 x 100 cost, 50% margin
	if product.SalePrice.StringFixed(2) != "300.00" {
		t.Fatalf("expected sale price 300.00, got %s", product.SalePrice)
	}

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:           "Integration customer",
		Kind:           models.CustomerKindCorporate,
		TaxNumber:      "111",
		PaymentTerms:   models.PaymentTermsCredit,
		CreditLimit:    decimal.NewFromInt(2000),
		OpeningBalance: decimal.NewFromInt(-500),
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	order, err := PostCreditOrder(ctx, &NewOrder{
		CustomerId: customer.ID,
		Lines:      []NewOrderLine{{ProductId: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("post order: %v", err)
	}
	if order.TotalPrice.StringFixed(2) != "600.00" {
		t.Fatalf("expected order total 600.00, got %s", order.TotalPrice)
	}

	balance, err := CurrentBalance(ctx, customer.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.StringFixed(2) != "-1100.00" {
		t.Fatalf("expected balance -1100.00 after order, got %s", balance)
	}

	gotItem, err := models.GetInventoryItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("fetch item: %v", err)
	}
	if gotItem.Quantity != 6 {
		t.Fatalf("expected 6 on hand after order (10 - 2x2), got %d", gotItem.Quantity)
	}

	// payment carries a business date before the order's posting date
	if _, err := PostCustomerPayment(ctx, &NewPayment{
		CustomerId:  customer.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: time.Now().Add(-72 * time.Hour),
	}); err != nil {
		t.Fatalf("post payment: %v", err)
	}
	balance, err = CurrentBalance(ctx, customer.ID)
	if err != nil {
		t.Fatalf("balance after payment: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance after payment, got %s", balance)
	}

	if err := VerifyCustomerLedger(ctx, customer.ID); err != nil {
		t.Fatalf("ledger verification: %v", err)
	}

	// the account keeps accepting postings after the backdated payment
	if _, err := PostManualAdjustment(ctx, customer.ID, time.Now(), "rounding correction", decimal.NewFromFloat(0.10)); err != nil {
		t.Fatalf("adjustment after backdated payment: %v", err)
	}
	if _, err := PostManualAdjustment(ctx, customer.ID, time.Now(), "rounding correction reversed", decimal.NewFromFloat(-0.10)); err != nil {
		t.Fatalf("offsetting adjustment: %v", err)
	}
	if err := VerifyCustomerLedger(ctx, customer.ID); err != nil {
		t.Fatalf("ledger verification after adjustments: %v", err)
	}

	// 6 on hand, order needs 2x4=8
	_, err = PostCreditOrder(ctx, &NewOrder{
		CustomerId: customer.ID,
		Lines:      []NewOrderLine{{ProductId: product.ID, Quantity: 4}},
	})
	var shortage *StockShortageError
	if !errors.As(err, &shortage) {
		t.Fatalf("expected StockShortageError, got %v", err)
	}
	if len(shortage.Shortages) != 1 || shortage.Shortages[0].OnHand != 6 {
		t.Fatalf("unexpected shortage detail: %+v", shortage.Shortages)
	}

	// append-only: editing a posted entry must fail
	entries, err := models.GetCustomerLedger(ctx, customer.ID)
	if err != nil || len(entries) == 0 {
		t.Fatalf("fetch ledger: %v (%d entries)", err, len(entries))
	}
	err = db.Model(entries[0]).Update("description", "tampered").Error
	if err == nil {
		t.Fatal("updating a ledger entry must be rejected")
	}
}

func openTestDB(t *testing.T, port string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("root:testpw@tcp(127.0.0.1:%s)/ledger_test?multiStatements=true&parseTime=true", port)
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var db *gorm.DB
	var err error
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		db, err = gorm.Open(mysql.Open(dsn), cfg)
		if err == nil {
			return db
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("could not open test database: %v", err)
	return nil
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("ledger-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("ledger-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=ledger_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
