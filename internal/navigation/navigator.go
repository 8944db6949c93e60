package navigation

import "sync"

// Navigator moves between routes.
type Navigator interface {
	Push(route string)
	Replace(route string)
	Current() string
	History() []string
}

var _ Navigator = (*StackNavigator)(nil)

// StackNavigator is an in-memory back-stack.
type StackNavigator struct {
	mu    sync.Mutex
	stack []string
}

// NewStackNavigator starts a stack at initial.
func NewStackNavigator(initial string) *StackNavigator {
	return &StackNavigator{stack: []string{initial}}
}

// Push adds route on top of the history.
func (n *StackNavigator) Push(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, route)
}

// Replace swaps the current entry so it does not stay in the history.
func (n *StackNavigator) Replace(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		n.stack = append(n.stack, route)
		return
	}
	n.stack[len(n.stack)-1] = route
}

// Back pops the current entry. It reports false at the root.
func (n *StackNavigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// Current returns the top of the stack.
func (n *StackNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return ""
	}
	return n.stack[len(n.stack)-1]
}

// History returns a copy of the stack, oldest first.
func (n *StackNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.stack...)
}
