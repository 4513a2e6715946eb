// Package interp is MDDL's live interpreter: it owns the MIDI-in
// message queue, the syntax parser and static environment a phrase is
// bound against, the tree-walking runtime that executes it, and the
// scheduler each phrase's accumulator plays through. One Interpreter
// is the whole of a performance session.
package interp

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/mddl-lang/mddl/diag"
	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/expr"
	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/runtime"
	"github.com/mddl-lang/mddl/scheduler"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/syntax"
	"github.com/mddl-lang/mddl/util"
	"github.com/mddl-lang/mddl/value"
)

// pollInterval is how long Run parks between queue drains once it has
// found nothing to do, keeping the drain loop's own latency well under
// the chord-recognition window the parser depends on.
const pollInterval = 5 * time.Millisecond

// Interpreter wires the syntax parser, static environment, runtime,
// and scheduler together: messages queued from the MIDI-in thread are
// drained and bound on one dispatch goroutine, and each completed
// phrase executes on a worker joined before the next phrase binds.
type Interpreter struct {
	Parser *syntax.Parser
	Env    *env.StaticEnvironment
	RT     *runtime.Runtime
	Sched  *scheduler.Scheduler

	queue     messageQueue
	humanizer *Humanizer
	echo      Echo
	execWG    sync.WaitGroup

	lastExecuted *expr.Root
	recording    bool
	session      *Session
	literals     map[string]*seq.Sequence

	// NoExec implements --translate: bind every phrase into the
	// environment as usual, but echo it instead of executing it.
	NoExec bool
}

// New returns an Interpreter with a fresh parser and environment,
// bound to sched for IEF_PLAY and IEF_NOTE_ON/OFF output.
func New(sched *scheduler.Scheduler, tempo, ppq int, humanizeWindow time.Duration) *Interpreter {
	p := syntax.New()
	p.Tempo = tempo
	p.PPQ = ppq

	it := &Interpreter{
		Parser:   p,
		Env:      env.New(),
		RT:       runtime.New(),
		Sched:    sched,
		session:  NewSession(),
		literals: make(map[string]*seq.Sequence),
	}
	it.humanizer = NewHumanizer(humanizeWindow, it.deliverNoteOff)
	return it
}

// Feed hands one MIDI-in message to the interpreter, safe to call from
// the driver's own callback goroutine.
func (it *Interpreter) Feed(msg gomidi.Message, tickNs int64) {
	it.queue.push(msg, tickNs)
}

// Run drains the message queue until stop closes, dispatching each
// message and executing any phrase it completes. It is meant to run
// on its own goroutine, the interpreter's dispatch thread; phrase
// bodies execute on a worker goroutine joined before the next bind.
func (it *Interpreter) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			it.execWG.Wait()
			return
		default:
		}

		msgs := it.queue.drain()
		for _, m := range msgs {
			it.dispatch(m)
		}
		if len(msgs) == 0 {
			time.Sleep(pollInterval)
		}
	}
}

// Drain processes every message currently queued without blocking or
// waiting for more, for an offline source that hands an entire batch
// of events to Feed before any of them need to be interpreted in real
// time. It returns once the queue is empty and any phrase execution
// the batch kicked off has finished.
func (it *Interpreter) Drain() {
	for {
		msgs := it.queue.drain()
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			it.dispatch(m)
		}
	}
	it.execWG.Wait()
}

func (it *Interpreter) dispatch(m queuedMsg) {
	var channel, note, vel uint8

	switch {
	case m.OffDirect:
		it.Parser.NoteOff(m.Pitch, m.TickNs)
	case m.Msg.GetNoteOn(&channel, &note, &vel) && vel > 0:
		it.onNoteOn(note, vel, m.TickNs)
	case m.Msg.GetNoteOn(&channel, &note, &vel):
		it.onNoteOff(note, m.TickNs)
	case m.Msg.GetNoteOff(&channel, &note, &vel):
		it.onNoteOff(note, m.TickNs)
	default:
		it.Parser.ProcessMsg(m.Msg, m.TickNs)
	}

	if it.Parser.PendingAST() {
		it.completePhrase()
	}
}

// onNoteOn routes a note-on through the humanization buffer unless the
// parser is mid sequence-literal capture, where exact event order and
// timing matter more than smoothing a trill.
func (it *Interpreter) onNoteOn(pitch, vel uint8, tickNs int64) {
	if it.Parser.ActiveSltx() {
		it.Parser.NoteOn(pitch, vel, tickNs)
		return
	}

	same, pending := it.humanizer.NoteOn(pitch)
	if pending == nil {
		it.Parser.NoteOn(pitch, vel, tickNs)
		return
	}

	if same {
		it.Parser.NoteOff(pending.pitch, pending.tickNs)
		it.Parser.NoteOn(pitch, vel, tickNs)
	} else {
		it.Parser.NoteOn(pitch, vel, tickNs)
		it.Parser.NoteOff(pending.pitch, pending.tickNs)
	}
}

func (it *Interpreter) onNoteOff(pitch uint8, tickNs int64) {
	if it.Parser.ActiveSltx() {
		it.Parser.NoteOff(pitch, tickNs)
		return
	}
	it.humanizer.NoteOff(pitch, tickNs)
}

// deliverNoteOff is the humanizer's fallback path: a buffered note-off
// that no following note-on ever resolved, released once the
// humanization window elapses untouched. The debounce timer fires on
// its own goroutine, so the release is re-queued rather than handed to
// the parser here.
func (it *Interpreter) deliverNoteOff(pitch uint8, tickNs int64) {
	it.queue.pushOff(pitch, tickNs)
}

// completePhrase binds the parser's freshly disambiguated AST and, if
// a new top-level statement was appended, launches a worker goroutine
// to execute it. The previous phrase's worker is joined first, so the
// program is only ever mutated between executions, though its audio
// may still be rendering in the scheduler.
func (it *Interpreter) completePhrase() {
	it.execWG.Wait()

	ast := it.Parser.AST
	appended := it.Env.AddAST(&ast)
	it.Parser.Clear()

	it.drainSlrx()

	if !appended || !it.Env.AtGlobalScope() {
		return
	}

	it.Env.ResolveLinks()

	start := it.Env.Global.Head
	if it.lastExecuted != nil {
		start = it.lastExecuted.Next
	}
	if start == nil {
		return
	}
	it.lastExecuted = it.Env.Global.Tail

	if it.NoExec {
		it.echo.Show(start)
		return
	}

	code := it.Env.Global.IEFCode
	it.execWG.Add(1)
	go func() {
		defer it.execWG.Done()
		it.executePhrase(start, code)
	}()
}

// executePhrase runs one phrase's statements and feeds the resulting
// sequence, if any, to the scheduler. Running off the dispatch
// goroutine keeps a COMPLETE kernel's wait (or a schedule of a
// still-capturing literal) from stalling the MIDI-in drain that would
// finish the capture.
func (it *Interpreter) executePhrase(start *expr.Root, code optable.OpId) {
	it.RT.PushScope(it.Env.Global)

	v, err := it.RT.Execute(start)
	if err != nil {
		diag.Printf("%s", err.Error())
		return
	}

	v, err = it.RT.ApplyIEF(code, v, it.Sched, &it.recording)
	if err != nil {
		diag.Printf("%s", err.Error())
	}

	it.echo.Show(start)
	it.scheduleResult(v, code)
	v.Release()
}

// scheduleResult plays a phrase's accumulator. IEF_PLAY has already
// scheduled it inside ApplyIEF; everything else that carries a
// sequence is scheduled here, at the phrase's natural end.
func (it *Interpreter) scheduleResult(v value.DataRef, code optable.OpId) {
	if code == optable.IEF_PLAY || v.Empty() || it.Sched == nil {
		return
	}
	v.Ref.Mu.Lock()
	it.Sched.AddSequence(v.Ref, v.Start, v.Length())
	v.Ref.Mu.Unlock()
}

// BindMsg feeds one message through the parser and environment without
// executing anything: the batch path for file input, where the whole
// program is bound first and run once afterward via RunProgram.
func (it *Interpreter) BindMsg(msg gomidi.Message, tick int64) {
	it.Parser.ProcessMsg(msg, tick)

	if it.Parser.PendingAST() {
		ast := it.Parser.AST
		it.Env.AddAST(&ast)
		it.Parser.Clear()
	}

	it.drainSlrx()
}

// ActiveCapture reports whether a sequence literal is still recording.
// A file beginning while one is active becomes that literal wholesale:
// the caller forces the capture open, binds the file through it, and
// closes it at end of file.
func (it *Interpreter) ActiveCapture() bool { return it.Parser.ActiveSltx() }

// ForceCapture pins the open sequence literal so the capture only ends
// at CloseCapture, not when its trigger pitch recurs mid-file.
func (it *Interpreter) ForceCapture() { it.Parser.ForceSltx() }

// CloseCapture finalizes the forced capture, releasing any COMPLETE
// kernel blocked on the literal.
func (it *Interpreter) CloseCapture() { it.Parser.CloseSltx() }

// RunProgram resolves branch and function links across everything
// bound so far and executes the global body once from its head,
// scheduling the result. The batch counterpart of completePhrase.
func (it *Interpreter) RunProgram() error {
	it.Env.ResolveLinks()
	it.lastExecuted = it.Env.Global.Tail

	it.RT.PushScope(it.Env.Global)

	v, err := it.RT.Execute(it.Env.Global.Head)
	if err != nil {
		diag.Printf("%s", err.Error())
		return err
	}

	code := it.Env.Global.IEFCode
	v, err = it.RT.ApplyIEF(code, v, it.Sched, &it.recording)
	if err != nil {
		diag.Printf("%s", err.Error())
	}

	it.echo.Show(it.Env.Global.Head)
	it.scheduleResult(v, code)
	v.Release()
	return nil
}

// PrintProgram writes every bound top-level statement, one per line,
// the --translate rendering of the program.
func (it *Interpreter) PrintProgram() {
	for root := it.Env.Global.Head; root != nil; root = root.Next {
		if root.Expr != nil {
			fmt.Println(root.Expr.String())
		}
	}
}

// drainSlrx starts capturing the next pending sequence literal once
// the parser is free to, one at a time; a performer can only record
// one literal's notes at a time anyway.
func (it *Interpreter) drainSlrx() {
	if it.Parser.ActiveSltx() || !it.Env.SlrxPending() {
		return
	}

	seqExpr := it.Env.SlrxPop()
	it.literals[seqExpr.ID] = seqExpr.Ref.Get()
	it.Parser.SetSltx(&syntax.SltxTarget{Seq: seqExpr.Ref.Get(), ID: seqExpr.Note})
}

// LiteralIDs lists the symbol of every sequence literal whose capture
// has started this session, in map order, for the debug HTTP
// endpoint's /literals listing.
func (it *Interpreter) LiteralIDs() []string {
	return util.GetKeys(it.literals)
}

// Scheduler, GlobalScope, and Recording satisfy httpapi.Source,
// letting the debug HTTP server inspect a running interpreter without
// this package importing net/http.
func (it *Interpreter) Scheduler() *scheduler.Scheduler { return it.Sched }
func (it *Interpreter) GlobalScope() *env.Scope { return it.Env.Global }
func (it *Interpreter) Recording() bool { return it.recording }

// SaveSession persists the interpreter's current function/literal
// inventory to path.
func (it *Interpreter) SaveSession(path string) error {
	return Save(path, it.session.Snapshot(it.Env.Global, it.literals))
}
