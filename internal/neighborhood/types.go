package neighborhood

// Neighborhood is one entry in the registry.
type Neighborhood struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

// Validate checks that required fields are present.
func (n *Neighborhood) Validate() error {
	if n.ID == "" || n.Name == "" {
		return ErrInvalidNeighborhood
	}
	return nil
}
