package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyFromTopic(t *testing.T) {
	cases := map[string]string{
		"app/uninstalled":  "AppUninstalledEvent",
		"customers/redact": "CustomersRedactEvent",
	}

	for topic, expected := range cases {
		t.Run(topic, func(t *testing.T) {
			require.Equal(t, expected, KeyFromTopic(topic))
		})
	}
}

func TestValidateWebhook(t *testing.T) {
	t.Run("Valid app uninstalled payload passes", func(t *testing.T) {
		body := []byte(`{"shop_id":42,"shop_domain":"demo-shop.example.com"}`)
		require.NoError(t, ValidateWebhook("app/uninstalled", "1.0.0", body))
	})

	t.Run("Missing shop_domain fails validation", func(t *testing.T) {
		body := []byte(`{"shop_id":42}`)
		require.Error(t, ValidateWebhook("app/uninstalled", "1.0.0", body))
	})

	t.Run("Valid customers redact payload passes", func(t *testing.T) {
		body := []byte(`{"shop_domain":"demo-shop.example.com","customer":{"id":"12345","email":"c@example.com"}}`)
		require.NoError(t, ValidateWebhook("customers/redact", "1.0.0", body))
	})

	t.Run("Customer without id fails validation", func(t *testing.T) {
		body := []byte(`{"shop_domain":"demo-shop.example.com","customer":{"email":"c@example.com"}}`)
		require.Error(t, ValidateWebhook("customers/redact", "1.0.0", body))
	})

	t.Run("Unknown topic fails with a missing schema error", func(t *testing.T) {
		body := []byte(`{}`)
		require.Error(t, ValidateWebhook("orders/create", "1.0.0", body))
	})

	t.Run("Non-JSON body fails validation", func(t *testing.T) {
		require.Error(t, ValidateWebhook("app/uninstalled", "1.0.0", []byte("not json")))
	})
}
