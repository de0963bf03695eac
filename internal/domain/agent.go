package domain

// Agent is a human operator identified by the display name they picked from
// the agents worksheet. There is no credential behind the name.
type Agent struct {
	Name string
}
