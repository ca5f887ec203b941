package service

// DefaultBarLength is the number of page links shown when none is configured
const DefaultBarLength = 5

type paginationService struct {
	barLength int
}

func newPaginationService(barLength int) *paginationService {
	if barLength <= 0 {
		barLength = DefaultBarLength
	}
	return &paginationService{barLength: barLength}
}

// GetPaginationBarNumbers returns up to BarLength 0-based page numbers
// centred on currentPage and clipped to [0, totalPages).
func (s *paginationService) GetPaginationBarNumbers(currentPage, totalPages int) []int {
	start := max(currentPage-s.barLength/2, 0)
	end := min(start+s.barLength, totalPages)

	numbers := make([]int, 0, s.barLength)
	for i := start; i < end; i++ {
		numbers = append(numbers, i)
	}
	return numbers
}

func (s *paginationService) BarLength() int {
	return s.barLength
}
