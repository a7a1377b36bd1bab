package domain

type AdminUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type DashboardStats struct {
	TotalCars        int `json:"total_cars"`
	AvailableCars    int `json:"available_cars"`
	RentedCars       int `json:"rented_cars"`
	TotalRentals     int `json:"total_rentals"`
	ActiveRentals    int `json:"active_rentals"`
	CompletedRentals int `json:"completed_rentals"`
	CancelledRentals int `json:"cancelled_rentals"`
}

type Dashboard struct {
	Stats DashboardStats `json:"stats"`
	Tab   CarTab         `json:"tab"`
	Cars  []Car          `json:"cars"`
}

// SelectTab returns the subset of cars shown under tab, in input order.
func SelectTab(cars []Car, tab CarTab) []Car {
	out := make([]Car, 0, len(cars))
	for _, c := range cars {
		switch tab {
		case CarTabRented:
			if !c.Available {
				out = append(out, c)
			}
		case CarTabAvailable:
			if c.Available {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

func ComputeStats(cars []Car, rentals []Rental) DashboardStats {
	var s DashboardStats
	s.TotalCars = len(cars)
	for _, c := range cars {
		if c.Available {
			s.AvailableCars++
		} else {
			s.RentedCars++
		}
	}
	s.TotalRentals = len(rentals)
	for _, r := range rentals {
		switch r.Status {
		case RentalStatusActive:
			s.ActiveRentals++
		case RentalStatusCompleted:
			s.CompletedRentals++
		case RentalStatusCancelled:
			s.CancelledRentals++
		}
	}
	return s
}
