package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dandiya-ticketing-platform/internal/config"
)

func TestRazorpayServiceMockMode(t *testing.T) {
	svc := NewRazorpayService(config.RazorpayConfig{})

	assert.True(t, svc.MockMode())
	assert.Equal(t, "rzp_test_mock", svc.KeyID())

	order, err := svc.CreateOrder(699, "booking_1", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.ID, "order_mock_"))
	assert.Equal(t, int64(69900), order.Amount, "order amount is in paise")
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "created", order.Status)

	// mock mode accepts any signature so local checkout completes
	assert.True(t, svc.VerifySignature("order_x", "pay_y", "whatever"))
}

func TestRazorpayServiceVerifySignature(t *testing.T) {
	svc := NewRazorpayService(config.RazorpayConfig{KeyID: "rzp_test_abc", KeySecret: "s3cret"})
	require.False(t, svc.MockMode())

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write([]byte("order_123|pay_456"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.VerifySignature("order_123", "pay_456", valid))
	assert.False(t, svc.VerifySignature("order_123", "pay_456", "tampered"))
	assert.False(t, svc.VerifySignature("order_999", "pay_456", valid))
}
