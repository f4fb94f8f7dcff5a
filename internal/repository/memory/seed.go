package memory

import (
	"time"

	"eventcircle/internal/domain"
)

// DemoUsers is the fixed demo user set.
func DemoUsers() []domain.User {
	return []domain.User{
		domain.NewUser(1, "John Doe", "john@example.com"),
		domain.NewUser(2, "Jane Doe", "jane@example.com"),
		domain.NewUser(3, "Bob Smith", "bob@example.com"),
		domain.NewUser(4, "Alice Johnson", "alice@example.com"),
		domain.NewUser(5, "Michael Brown", "michael@example.com"),
	}
}

// DemoEvents returns one event per demo user, each with empty membership lists.
func DemoEvents(now time.Time) []*domain.Event {
	seed := []struct {
		hostID int64
		fields domain.EventFields
	}{
		{1, domain.EventFields{
			Title:       "Birthday Party",
			Description: "Celebrating John's birthday with friends and family. Join us for cake, games, and fun!",
			Date:        "2024-09-20",
			Time:        "18:00",
			Location:    "John's House, 123 Main St",
			Category:    string(domain.CategorySocial),
			ImageURL:    "https://images.pexels.com/photos/1405528/pexels-photo-1405528.jpeg",
		}},
		{2, domain.EventFields{
			Title:       "Wedding",
			Description: "Jane and Bob's wedding ceremony followed by reception. Smart casual dress code.",
			Date:        "2024-10-15",
			Time:        "12:00",
			Location:    "Local Church & Grand Hotel",
			Category:    string(domain.CategoryFormal),
			ImageURL:    "https://images.pexels.com/photos/1114425/pexels-photo-1114425.jpeg",
		}},
		{3, domain.EventFields{
			Title:       "Tech Meetup",
			Description: "Monthly tech community meeting to discuss latest trends in web development.",
			Date:        "2024-09-12",
			Time:        "19:00",
			Location:    "Tech Hub, Downtown",
			Category:    string(domain.CategoryProfessional),
			ImageURL:    "https://images.pexels.com/photos/1181472/pexels-photo-1181472.jpeg",
		}},
		{4, domain.EventFields{
			Title:       "Charity Run",
			Description: "5K run to raise money for local hospital. All fitness levels welcome.",
			Date:        "2024-10-05",
			Time:        "08:00",
			Location:    "City Park",
			Category:    string(domain.CategorySports),
		}},
		{5, domain.EventFields{
			Title:       "Book Club",
			Description: `Discussion of "The Great Gatsby" by F. Scott Fitzgerald. New members welcome!`,
			Date:        "2024-09-18",
			Time:        "20:00",
			Location:    "Community Library",
			Category:    string(domain.CategoryEducational),
			ImageURL:    "https://images.pexels.com/photos/1907785/pexels-photo-1907785.jpeg",
		}},
	}
	events := make([]*domain.Event, 0, len(seed))
	for i, s := range seed {
		e := domain.NewEvent(s.fields, s.hostID, now)
		e.ID = int64(i + 1)
		events = append(events, e)
	}
	return events
}
