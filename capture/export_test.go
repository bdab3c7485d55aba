package capture

// LockCount exposes the number of live tab locks to tests.
func (g *Gate) LockCount() int { return g.lockCount() }
