package category

// Service exposes the category list.
type Service struct {
	names []string
}

func NewService() *Service {
	return &Service{names: All}
}

// List returns a copy so callers cannot mutate the fixed set.
func (s *Service) List() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
