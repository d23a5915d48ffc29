package wishlist

// Service orchestrates wishlist operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(userID int) ([]string, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Get(userID)
}

func (s *Service) Add(userID int, handle string) ([]string, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	if handle == "" {
		return nil, ErrMissingHandle
	}
	return s.repo.Add(userID, handle)
}

func (s *Service) Remove(userID int, handle string) ([]string, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	if handle == "" {
		return nil, ErrMissingHandle
	}
	return s.repo.Remove(userID, handle)
}
