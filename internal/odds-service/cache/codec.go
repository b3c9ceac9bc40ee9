package cache

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// Codec serializes odds snapshots stored in the cache
type Codec interface {
	Name() string
	Marshal(rec model.OddsRecord) ([]byte, error)
	Unmarshal(b []byte) (model.OddsRecord, error)
}

// CodecByName resolves CACHE_CODEC values ("json" or "msgpack")
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %q", name)
	}
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(rec model.OddsRecord) ([]byte, error) {
	// creator is never part of the cached snapshot
	rec.Creator = nil
	return json.Marshal(rec)
}

func (JSONCodec) Unmarshal(b []byte) (model.OddsRecord, error) {
	var rec model.OddsRecord
	err := json.Unmarshal(b, &rec)
	return rec, err
}

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(rec model.OddsRecord) ([]byte, error) {
	return msgpack.Marshal(&rec)
}

func (MsgpackCodec) Unmarshal(b []byte) (model.OddsRecord, error) {
	var rec model.OddsRecord
	err := msgpack.Unmarshal(b, &rec)
	return rec, err
}
