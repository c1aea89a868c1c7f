package state

// Celebrity is one card of the deduction pool.
type Celebrity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (c Celebrity) GetID() string       { return c.ID }
func (c Celebrity) GetCategory() string { return c.Category }

var defaultPool = []Celebrity{
	{ID: "c01", Name: "Meryl Streep", Category: "actor"},
	{ID: "c02", Name: "Denzel Washington", Category: "actor"},
	{ID: "c03", Name: "Audrey Hepburn", Category: "actor"},
	{ID: "c04", Name: "Jackie Chan", Category: "actor"},
	{ID: "c05", Name: "Beyonce", Category: "musician"},
	{ID: "c06", Name: "Freddie Mercury", Category: "musician"},
	{ID: "c07", Name: "Taylor Swift", Category: "musician"},
	{ID: "c08", Name: "Bob Marley", Category: "musician"},
	{ID: "c09", Name: "Serena Williams", Category: "athlete"},
	{ID: "c10", Name: "Lionel Messi", Category: "athlete"},
	{ID: "c11", Name: "Usain Bolt", Category: "athlete"},
	{ID: "c12", Name: "Simone Biles", Category: "athlete"},
	{ID: "c13", Name: "Marie Curie", Category: "scientist"},
	{ID: "c14", Name: "Albert Einstein", Category: "scientist"},
	{ID: "c15", Name: "Ada Lovelace", Category: "scientist"},
	{ID: "c16", Name: "Nikola Tesla", Category: "scientist"},
	{ID: "c17", Name: "Nelson Mandela", Category: "politician"},
	{ID: "c18", Name: "Abraham Lincoln", Category: "politician"},
	{ID: "c19", Name: "Angela Merkel", Category: "politician"},
	{ID: "c20", Name: "Winston Churchill", Category: "politician"},
	{ID: "c21", Name: "Jane Austen", Category: "author"},
	{ID: "c22", Name: "Mark Twain", Category: "author"},
	{ID: "c23", Name: "Agatha Christie", Category: "author"},
	{ID: "c24", Name: "Haruki Murakami", Category: "author"},
}

// DefaultPool returns a copy of the built-in celebrity pool.
func DefaultPool() []Celebrity {
	pool := make([]Celebrity, len(defaultPool))
	copy(pool, defaultPool)
	return pool
}

func findCelebrity(pool []Celebrity, id string) (Celebrity, bool) {
	for _, c := range pool {
		if c.ID == id {
			return c, true
		}
	}
	return Celebrity{}, false
}
