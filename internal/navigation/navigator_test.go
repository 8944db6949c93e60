package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackNavigator(t *testing.T) {
	nav := NewStackNavigator(LoginRoute)
	nav.Push(SalesmanRoute)
	nav.Push("/(salesman)/leads")

	assert.Equal(t, "/(salesman)/leads", nav.Current())

	nav.Replace("/(salesman)/customers")
	assert.Equal(t, []string{LoginRoute, SalesmanRoute, "/(salesman)/customers"}, nav.History())

	assert.True(t, nav.Back())
	assert.True(t, nav.Back())
	assert.False(t, nav.Back())
	assert.Equal(t, LoginRoute, nav.Current())
}

func TestNavigatorHistoryIsACopy(t *testing.T) {
	var nav Navigator = NewStackNavigator(LoginRoute)
	nav.Push(SalesmanRoute)

	history := nav.History()
	history[0] = "/tampered"

	assert.Equal(t, []string{LoginRoute, SalesmanRoute}, nav.History())
}
