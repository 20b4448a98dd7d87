package xbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocols_Has(t *testing.T) {
	p := ProtocolDeleteWindow | ProtocolTakeFocus
	assert.True(t, p.Has(ProtocolDeleteWindow))
	assert.True(t, p.Has(ProtocolTakeFocus))

	justDelete := ProtocolDeleteWindow
	assert.True(t, justDelete.Has(ProtocolDeleteWindow))
	assert.False(t, justDelete.Has(ProtocolTakeFocus))
}
