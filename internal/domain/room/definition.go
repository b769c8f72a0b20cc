package room

import (
	"fmt"
	"sort"
)

// Box is one openable box of the box-code room.
type Box struct {
	ID     int    `json:"id"`
	Number int    `json:"number"`
	Hint   string `json:"hint"`
}

// Button is one control button of the sequence room.
type Button struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Chemical is one selectable chemical of the laboratory room.
type Chemical struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// Definition is the immutable description of a room and its solution.
// Only the fields belonging to Kind are populated.
type Definition struct {
	ID          int
	Kind        Kind
	Title       string
	Description string
	Achievement Achievement

	Boxes              []Box
	Buttons            []Button
	CorrectSequence    []int
	Chemicals          []Chemical
	CorrectCombination []string
	Countdown          int
	CorrectCode        string
	Hints              []string
	CorrectDigits      []int
}

// HasAchievement reports whether solving this room unlocks a badge.
func (d Definition) HasAchievement() bool {
	return d.Achievement.Name != ""
}

// Box returns the box with the given id.
func (d Definition) Box(id int) (Box, bool) {
	for _, b := range d.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// HasButton reports whether the room has a button with that id.
func (d Definition) HasButton(id int) bool {
	for _, b := range d.Buttons {
		if b.ID == id {
			return true
		}
	}
	return false
}

// HasChemical reports whether the room offers that chemical.
func (d Definition) HasChemical(id string) bool {
	for _, c := range d.Chemicals {
		if c.ID == id {
			return true
		}
	}
	return false
}

// FinalCode joins CorrectDigits into the string a player must type.
func (d Definition) FinalCode() string {
	b := make([]byte, len(d.CorrectDigits))
	for i, digit := range d.CorrectDigits {
		b[i] = byte('0' + digit)
	}
	return string(b)
}

func (d Definition) clone() Definition {
	c := d
	c.Boxes = append([]Box(nil), d.Boxes...)
	c.Buttons = append([]Button(nil), d.Buttons...)
	c.CorrectSequence = append([]int(nil), d.CorrectSequence...)
	c.Chemicals = append([]Chemical(nil), d.Chemicals...)
	c.CorrectCombination = append([]string(nil), d.CorrectCombination...)
	c.Hints = append([]string(nil), d.Hints...)
	c.CorrectDigits = append([]int(nil), d.CorrectDigits...)
	return c
}

// Catalog holds the static definitions of every room, keyed by id.
type Catalog struct {
	defs map[int]Definition
}

// NewCatalog builds a catalog from a list of definitions.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{defs: make(map[int]Definition, len(defs))}
	for _, d := range defs {
		c.defs[d.ID] = d.clone()
	}
	return c
}

// Get returns a copy of the definition for id.
func (c *Catalog) Get(id int) (Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("room %d: %w", id, ErrUnknownRoom)
	}
	return d.clone(), nil
}

// Len returns the number of rooms.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// IDs returns the room ids in ascending order.
func (c *Catalog) IDs() []int {
	ids := make([]int, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LastRoom is the id of the final room.
func (c *Catalog) LastRoom() int {
	ids := c.IDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// DefaultCatalog returns the five rooms of the game.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Definition{
			ID:          1,
			Kind:        KindBoxCode,
			Title:       "Room 1: The Cell",
			Description: "You find yourself in a dark cell. Find the door code by opening the boxes. Each box contains a digit. Open all three boxes to reveal the 3-digit code.",
			Achievement: Achievement{Name: "First Escape", Description: "You opened your first door!"},
			Boxes: []Box{
				{ID: 1, Number: 4, Hint: "First digit: 4"},
				{ID: 2, Number: 2, Hint: "Second digit: 2"},
				{ID: 3, Number: 7, Hint: "Third digit: 7"},
			},
			CorrectCode: "427",
		},
		Definition{
			ID:          2,
			Kind:        KindSequence,
			Title:       "Room 2: Control Room",
			Description: `You are in the control room. Activate the power by pressing the buttons in the correct order. Hint: "Start with the smallest number (1), then the largest (4), then the middle-left (2), and finally the middle-right (3)."`,
			Achievement: Achievement{Name: "Power Master", Description: "You activated the control room!"},
			Buttons: []Button{
				{ID: 1, Label: "1"},
				{ID: 2, Label: "2"},
				{ID: 3, Label: "3"},
				{ID: 4, Label: "4"},
			},
			CorrectSequence: []int{1, 4, 2, 3},
		},
		Definition{
			ID:          3,
			Kind:        KindChemical,
			Title:       "Room 3: Laboratory",
			Description: `In the laboratory, you must mix the correct chemicals. Select the three chemicals that together form a safe combination. Hint: "Choose the ones that start with the letters A, C, and E."`,
			Achievement: Achievement{Name: "Chemist", Description: "You mixed the perfect combination!"},
			Chemicals: []Chemical{
				{ID: "A", Name: "Ammonia", Hint: "Starts with A"},
				{ID: "B", Name: "Benzene", Hint: "Not correct"},
				{ID: "C", Name: "Chlorine", Hint: "Starts with C"},
				{ID: "D", Name: "Dichloride", Hint: "Not correct"},
				{ID: "E", Name: "Ethanol", Hint: "Starts with E"},
				{ID: "F", Name: "Formaldehyde", Hint: "Not correct"},
			},
			CorrectCombination: []string{"A", "C", "E"},
		},
		Definition{
			ID:          4,
			Kind:        KindTimedCode,
			Title:       "Room 4: Machine Room",
			Description: `A countdown has started! Solve the riddle to stop it. Riddle: "The first digit is seven. The second is three (half of six). The third is five. The fourth is nine (three squared)."`,
			Achievement: Achievement{Name: "Time Master", Description: "You stopped the countdown in time!"},
			Countdown:   60,
			CorrectCode: "7359",
		},
		Definition{
			ID:          5,
			Kind:        KindFinalCode,
			Title:       "Room 5: The Exit",
			Description: "Final room! Use everything you have learned. The code consists of 5 digits.",
			Hints: []string{
				"Hint 1: Third digit from Room 1 = 7",
				"Hint 2: First digit from Room 2 = 1",
				"Hint 3: Number of chemicals from Room 3 = 3",
				"Hint 4: Second digit from Room 4 = 3",
				"Hint 5: Total number of rooms = 5",
			},
			CorrectDigits: []int{7, 1, 3, 3, 5},
		},
	)
}
