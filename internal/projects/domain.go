package projects

import (
	"time"

	"terraprime/internal/pagination"
)

// Lot statuses.
const (
	LotActive   = "ACTIVE"
	LotInactive = "INACTIVE"
	LotSold     = "SOLD"
	LotReserved = "RESERVED"
)

type Project struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Stage struct {
	ID        string `json:"id" validate:"required"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name" validate:"required"`
	IsActive  bool   `json:"isActive"`
}

type Block struct {
	ID       string `json:"id" validate:"required"`
	StageID  string `json:"stageId"`
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"isActive"`
}

// Lot is the unit that gets sold.
type Lot struct {
	ID       string  `json:"id" validate:"required"`
	BlockID  string  `json:"blockId"`
	Name     string  `json:"name" validate:"required"`
	Area     float64 `json:"area" validate:"gte=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	Currency string  `json:"currency,omitempty"`
	Status   string  `json:"status" validate:"oneof=ACTIVE INACTIVE SOLD RESERVED"`
}

// ProjectInput creates or updates a project.
type ProjectInput struct {
	Name        string `json:"name" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// NodeInput creates or updates a stage or a block.
type NodeInput struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type LotInput struct {
	Name     string  `json:"name" binding:"required"`
	Area     float64 `json:"area" binding:"gt=0"`
	Price    float64 `json:"price" binding:"gt=0"`
	Currency string  `json:"currency"`
}

// BlockNode is a block with its lots.
type BlockNode struct {
	Block
	Lots []Lot `json:"lots" validate:"dive"`
}

// StageNode is a stage with its blocks.
type StageNode struct {
	Stage
	Blocks []BlockNode `json:"blocks" validate:"dive"`
}

// Tree is the whole hierarchy of a project.
type Tree struct {
	Project
	Stages []StageNode `json:"stages" validate:"dive"`
}

// LotCount tallies the lots of a tree per status.
type LotCount struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Reserved int `json:"reserved"`
	Sold     int `json:"sold"`
}

// Count walks the tree and tallies its lots.
func (t Tree) Count() LotCount {
	var c LotCount
	for _, st := range t.Stages {
		for _, b := range st.Blocks {
			for _, l := range b.Lots {
				c.Total++
				switch l.Status {
				case LotActive:
					c.Active++
				case LotInactive:
					c.Inactive++
				case LotReserved:
					c.Reserved++
				case LotSold:
					c.Sold++
				}
			}
		}
	}
	return c
}

type Filter struct {
	Search string
	Page   pagination.Params
}

type LotFilter struct {
	Status string
	Page   pagination.Params
}

type (
	ProjectList = pagination.Page[Project]
	LotList     = pagination.Page[Lot]
)
