package tx

import (
	"errors"
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/birchkv/birch/lib/hseq"
	"github.com/birchkv/birch/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	// Logger is the logger for the tx package
	Logger = logger.GetLogger("tx")

	metricCommits  = metrics.NewCounter("birch_tx_commits_total")
	metricAborts   = metrics.NewCounter("birch_tx_aborts_total")
	metricTimeouts = metrics.NewCounter("birch_tx_timeouts_total")
)

// Coordinator drives a command batch through an executor: begin, enqueue in
// order, commit, then decode the positional replies into a typed sequence
// with acknowledgment-only entries removed.
type Coordinator struct {
	executor IExecutor
}

// NewCoordinator creates a coordinator on top of an executor.
func NewCoordinator(executor IExecutor) *Coordinator {
	return &Coordinator{executor: executor}
}

// Run executes the batch atomically and returns the filtered result sequence.
// The result contains one entry per non-void command, in batch order. An
// empty or all-void batch yields an empty sequence; begin and commit are
// still issued so the round-trip is observable server-side.
//
// On ErrTransactionAborted nothing was applied. On ErrTimeout the outcome is
// unknown and the batch is never retried here.
func (c *Coordinator) Run(batch Batch) (hseq.Seq, error) {
	handle, err := c.executor.BeginTransaction()
	if err != nil {
		return hseq.Seq{}, fmt.Errorf("begin transaction: %w", err)
	}

	for i, cmd := range batch {
		if err := c.executor.Enqueue(handle, cmd.req); err != nil {
			return hseq.Seq{}, fmt.Errorf("enqueue command %d: %w", i, err)
		}
	}

	replies, err := c.executor.Commit(handle)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionAborted):
			metricAborts.Inc()
			Logger.Debugf("transaction %d aborted: %v", handle, err)
		case errors.Is(err, ErrTimeout):
			metricTimeouts.Inc()
			Logger.Warningf("transaction %d timed out, outcome unknown", handle)
		}
		return hseq.Seq{}, err
	}
	metricCommits.Inc()

	seq, err := decode(batch, replies)
	if err != nil {
		return hseq.Seq{}, err
	}
	return seq.Project(), nil
}

// --------------------------------------------------------------------------
// Reply Decoding
// --------------------------------------------------------------------------

// decode turns positional commit replies into a raw (unprojected) sequence,
// checking every reply against the kind its command declared.
func decode(batch Batch, replies []common.Message) (hseq.Seq, error) {
	if len(replies) != len(batch) {
		return hseq.Seq{}, &DecodeError{
			Position: -1,
			Reason:   fmt.Sprintf("%d commands but %d replies", len(batch), len(replies)),
		}
	}

	values := make([]hseq.Value, len(replies))
	for i, reply := range replies {
		if reply.MsgType != batch[i].req.MsgType {
			return hseq.Seq{}, &DecodeError{
				Position: i,
				Reason:   fmt.Sprintf("sent %s but reply is %s", batch[i].req.MsgType, reply.MsgType),
			}
		}
		if reply.Err != "" {
			return hseq.Seq{}, &DecodeError{
				Position: i,
				Reason:   fmt.Sprintf("command failed: %s", reply.Err),
			}
		}

		switch batch[i].kind {
		case hseq.KindVoid:
			values[i] = hseq.Void()
		case hseq.KindBytes:
			values[i] = hseq.Bytes(reply.Value, reply.Ok)
		case hseq.KindBool:
			values[i] = hseq.Bool(reply.Ok)
		default:
			return hseq.Seq{}, &DecodeError{
				Position: i,
				Reason:   fmt.Sprintf("unsupported result kind %s", batch[i].kind),
			}
		}
	}

	seq, err := hseq.NewSeq(batch.Shape(), values)
	if err != nil {
		return hseq.Seq{}, &DecodeError{Position: -1, Reason: err.Error()}
	}
	return seq, nil
}
