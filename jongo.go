package jongo

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jongo-go/jongo/pkg/driver/mongodriver"
)

// Jongo hands out collections of one database sharing a Config.
type Jongo struct {
	db  *mongo.Database
	cfg *Config
}

// New returns a Jongo for db. A nil cfg uses NewConfig.
func New(db *mongo.Database, cfg *Config) *Jongo {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Jongo{db: db, cfg: cfg}
}

func (j *Jongo) Database() *mongo.Database {
	return j.db
}

func (j *Jongo) Collection(name string) (*Collection, error) {
	return FromDriver(mongodriver.New(j.db.Collection(name)), j.cfg)
}
