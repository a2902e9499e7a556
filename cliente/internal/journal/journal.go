// Package journal grava estatísticas por frame num banco SQLite.
//
// A thread de render só enfileira amostras num buffer circular lock-free; uma goroutine
// escritora agrupa as amostras em lotes (protobuf + zstd) e grava uma linha por lote.
package journal

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	pkgutil "VoxelTerrain/shared/pkg/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrClosed é retornado por Record depois de Close.
var ErrClosed = errors.New("journal: fechado")

// SessionModel é uma execução do programa.
type SessionModel struct {
	ID        string `gorm:"primaryKey"`
	Backend   string
	Seed      int64
	StartedAt time.Time
	EndedAt   *time.Time
	Frames    uint64
	Dropped   uint64
}

// BatchModel é um lote de amostras consecutivas. As colunas de resumo permitem consultas
// sem descomprimir o blob.
type BatchModel struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index:idx_session_frame"`
	FirstFrame uint64 `gorm:"index:idx_session_frame"`
	LastFrame  uint64
	Samples    int
	Draws      int64
	MaxWaitUS  int64
	Data       []byte // Amostras em protobuf comprimido com zstd
	CreatedAt  time.Time
}

// Options configura o journal.
type Options struct {
	Path    string
	Session string // Vazio: gerado a partir da hora
	Backend string
	Seed    int64

	BatchSize  int           // Amostras por linha (padrão 64)
	Capacity   int           // Capacidade do buffer circular (padrão 1024)
	FlushEvery time.Duration // Intervalo máximo entre gravações (padrão 500ms)
}

func (o *Options) defaults() {
	if o.Session == "" {
		o.Session = time.Now().Format("20060102-150405.000")
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 64
	}
	if o.Capacity <= 0 {
		o.Capacity = 1024
	}
	if o.FlushEvery <= 0 {
		o.FlushEvery = 500 * time.Millisecond
	}
}

// Journal é o escritor assíncrono.
type Journal struct {
	opts  Options
	db    *gorm.DB
	codec *codec
	ring  *pkgutil.RingBuffer[Sample]

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
	written   atomic.Uint64
	dropped   atomic.Uint64

	errMu sync.Mutex
	err   error
}

func openDB(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}
	if err := db.AutoMigrate(&SessionModel{}, &BatchModel{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}
	return db, nil
}

// Open abre (ou cria) o banco, registra a sessão e inicia a goroutine escritora.
func Open(opts Options) (*Journal, error) {
	opts.defaults()

	db, err := openDB(opts.Path)
	if err != nil {
		return nil, err
	}
	c, err := newCodec()
	if err != nil {
		closeDB(db)
		return nil, err
	}

	session := SessionModel{ID: opts.Session, Backend: opts.Backend, Seed: opts.Seed, StartedAt: time.Now()}
	if err := db.Save(&session).Error; err != nil {
		c.Close()
		closeDB(db)
		return nil, fmt.Errorf("registrando sessão: %w", err)
	}

	j := &Journal{
		opts:  opts,
		db:    db,
		codec: c,
		ring:  pkgutil.NewRingBuffer[Sample](opts.Capacity),
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go j.run()

	log.Printf("[Journal] Sessão %s gravando em %s (lotes de %d)", opts.Session, opts.Path, opts.BatchSize)
	return j, nil
}

// Session é o identificador da sessão gravada.
func (j *Journal) Session() string { return j.opts.Session }

// Record enfileira uma amostra sem bloquear. Com o buffer cheio a amostra é descartada
// e contada em Dropped.
func (j *Journal) Record(s Sample) error {
	if j.closed.Load() {
		return ErrClosed
	}
	if err := j.ring.Enqueue(s); err != nil {
		j.dropped.Add(1)
		return nil
	}
	if j.ring.Len() >= j.opts.BatchSize {
		select {
		case j.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Written e Dropped contam as amostras gravadas e descartadas.
func (j *Journal) Written() uint64 { return j.written.Load() }
func (j *Journal) Dropped() uint64 { return j.dropped.Load() }

func (j *Journal) setErr(err error) {
	j.errMu.Lock()
	if j.err == nil {
		j.err = err
	}
	j.errMu.Unlock()
}

// Err retorna o primeiro erro de gravação.
func (j *Journal) Err() error {
	j.errMu.Lock()
	defer j.errMu.Unlock()
	return j.err
}

func (j *Journal) run() {
	defer close(j.done)
	ticker := time.NewTicker(j.opts.FlushEvery)
	defer ticker.Stop()

	batch := make([]Sample, 0, j.opts.BatchSize)
	for {
		select {
		case <-j.wake:
		case <-ticker.C:
		case <-j.quit:
			j.drain(batch)
			return
		}
		batch = j.drain(batch)
	}
}

// drain esvazia o buffer circular em lotes completos e grava o resto.
func (j *Journal) drain(batch []Sample) []Sample {
	for {
		s, err := j.ring.Dequeue()
		if err != nil {
			break
		}
		batch = append(batch, s)
		if len(batch) == j.opts.BatchSize {
			j.flush(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		j.flush(batch)
		batch = batch[:0]
	}
	return batch
}

func (j *Journal) flush(batch []Sample) {
	row := BatchModel{
		SessionID:  j.opts.Session,
		FirstFrame: batch[0].Frame,
		LastFrame:  batch[len(batch)-1].Frame,
		Samples:    len(batch),
		Data:       j.codec.Encode(batch),
	}
	for _, s := range batch {
		row.Draws += int64(s.Draws)
		if us := s.FenceWait.Microseconds(); us > row.MaxWaitUS {
			row.MaxWaitUS = us
		}
	}
	if err := j.db.Create(&row).Error; err != nil {
		log.Printf("[Journal] ERRO ao gravar lote %d-%d: %v", row.FirstFrame, row.LastFrame, err)
		j.setErr(err)
		return
	}
	j.written.Add(uint64(len(batch)))
}

// Close grava as amostras pendentes, fecha a sessão e o banco.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		j.closed.Store(true)
		close(j.quit)
		<-j.done

		now := time.Now()
		upd := j.db.Model(&SessionModel{ID: j.opts.Session}).Updates(map[string]any{
			"ended_at": &now,
			"frames":   j.written.Load(),
			"dropped":  j.dropped.Load(),
		})
		err = errors.Join(j.Err(), upd.Error)

		j.codec.Close()
		err = errors.Join(err, closeDB(j.db))
		log.Printf("[Journal] Sessão %s encerrada: %d amostras gravadas, %d descartadas",
			j.opts.Session, j.written.Load(), j.dropped.Load())
	})
	return err
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load lê todas as amostras de uma sessão, em ordem de frame.
func Load(path, session string) ([]Sample, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer closeDB(db)

	var rows []BatchModel
	if err := db.Where("session_id = ?", session).Order("first_frame").Find(&rows).Error; err != nil {
		return nil, err
	}

	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []Sample
	for _, r := range rows {
		samples, err := c.Decode(r.Data)
		if err != nil {
			return out, fmt.Errorf("lote %d: %w", r.ID, err)
		}
		out = append(out, samples...)
	}
	return out, nil
}

// Sessions lista as sessões gravadas no banco.
func Sessions(path string) ([]SessionModel, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer closeDB(db)

	var out []SessionModel
	err = db.Order("started_at").Find(&out).Error
	return out, err
}
