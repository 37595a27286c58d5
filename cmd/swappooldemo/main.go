// Command swappooldemo spawns a handful of values into a budget-limited
// pool and prints what ends up hot versus flushed to disk, a small
// smoke test for the library's eviction behavior.
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/krishna8167/swappool"
)

// document is the demo's own Payload: a tiny string wrapper, standing in
// for whatever real value type an application would store.
type document struct {
	text string
}

func (d document) SizeOf() int { return len(d.text) }

func (d document) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4+len(d.text))
	binary.LittleEndian.PutUint32(out, uint32(len(d.text)))
	copy(out[4:], d.text)
	return out, nil
}

func (d *document) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errors.New("document: short buffer")
	}
	n := binary.LittleEndian.Uint32(data)
	if len(data) < int(4+n) {
		return errors.New("document: truncated buffer")
	}
	d.text = string(data[4 : 4+n])
	return nil
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	dir, err := os.MkdirTemp("", "swappooldemo-*")
	if err != nil {
		log.Fatalf("create scratch dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// A deliberately small budget: only two documents this size can stay
	// hot at once, so later spawns are written straight to disk cold.
	const budget = 256

	pool, err := swappool.NewPool[document, *document](
		budget,
		dir,
		swappool.WithLogger(logger),
		swappool.WithTransformer(swappool.NewZstdTransformer(0)),
	)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	titles := []string{"intro", "architecture", "operations", "appendix"}
	entities := make([]*swappool.Entity[document, *document], 0, len(titles))

	for _, title := range titles {
		body := fmt.Sprintf("section %q contains roughly a hundred bytes of placeholder prose for the demo run.", title)

		e, err := pool.SpawnNamed(title, document{text: body})
		if err != nil {
			log.Fatalf("spawn %s: %v", title, err)
		}
		entities = append(entities, e)
	}

	for _, e := range entities {
		state := "cold"
		if e.IsHot() {
			state = "hot"
		}
		fmt.Printf("entity uuid=%d state=%s\n", e.UUID(), state)
	}

	fmt.Println(pool.Stats())
}
