package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/network"
)

// Plan returns the inputs that solve def in the fewest actions.
func Plan(def room.Definition) []network.PlayerAction {
	input := func(a room.Action, v string) network.PlayerAction {
		return network.PlayerAction{Type: network.ActionInput, Action: string(a), Value: v}
	}

	var plan []network.PlayerAction
	switch def.Kind {
	case room.KindBoxCode:
		for _, b := range def.Boxes {
			plan = append(plan, input(room.ActionOpenBox, strconv.Itoa(b.ID)))
		}
	case room.KindSequence:
		for _, id := range def.CorrectSequence {
			plan = append(plan, input(room.ActionPressButton, strconv.Itoa(id)))
		}
	case room.KindChemical:
		for _, id := range def.CorrectCombination {
			plan = append(plan, input(room.ActionToggleChemical, id))
		}
		plan = append(plan, input(room.ActionMix, ""))
	case room.KindTimedCode:
		plan = append(plan, input(room.ActionSubmitCode, def.CorrectCode))
	case room.KindFinalCode:
		plan = append(plan, input(room.ActionSubmitCode, def.FinalCode()))
	}
	return plan
}

type statusPayload struct {
	Phase       string `json:"phase"`
	CurrentRoom int    `json:"currentRoom"`
	Elapsed     int    `json:"elapsed"`
}

type frame struct {
	Type    network.MessageType `json:"type"`
	Payload json.RawMessage     `json:"payload"`
}

// RunResult summarizes one full playthrough.
type RunResult struct {
	Actions     int
	Events      int
	Rejected    int
	GameSeconds int
	Wall        time.Duration
	Latencies   []time.Duration
}

// Runner plays the catalog against a live server over one connection.
type Runner struct {
	URL      string
	Catalog  *room.Catalog
	Interval time.Duration // must not be shorter than the server's action interval
	Timeout  time.Duration // per reply
}

// Run dials the server, starts a new game and plays it to completion.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	var res RunResult

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.URL, nil)
	if err != nil {
		return res, fmt.Errorf("dial %s: %w", r.URL, err)
	}
	defer conn.Close()

	if _, err := r.await(conn, &res); err != nil {
		return res, fmt.Errorf("initial status: %w", err)
	}

	began := time.Now()
	send := func(a network.PlayerAction) (statusPayload, error) {
		select {
		case <-ctx.Done():
			return statusPayload{}, ctx.Err()
		case <-time.After(r.Interval):
		}
		start := time.Now()
		if err := conn.WriteJSON(a); err != nil {
			return statusPayload{}, err
		}
		st, err := r.await(conn, &res)
		res.Actions++
		res.Latencies = append(res.Latencies, time.Since(start))
		return st, err
	}

	st, err := send(network.PlayerAction{Type: network.ActionStart})
	if err != nil {
		return res, fmt.Errorf("start: %w", err)
	}

	ids := r.Catalog.IDs()
	for i, id := range ids {
		if st.CurrentRoom != id {
			return res, fmt.Errorf("expected room %d, server is in room %d", id, st.CurrentRoom)
		}
		def, err := r.Catalog.Get(id)
		if err != nil {
			return res, err
		}
		for _, a := range Plan(def) {
			if st, err = send(a); err != nil {
				return res, fmt.Errorf("room %d %s: %w", id, a.Action, err)
			}
		}
		if i < len(ids)-1 {
			if st, err = send(network.PlayerAction{Type: network.ActionAdvance}); err != nil {
				return res, fmt.Errorf("advance from room %d: %w", id, err)
			}
		}
	}

	res.Wall = time.Since(began)
	if st.Phase != "COMPLETED" {
		return res, fmt.Errorf("game not completed, phase %s", st.Phase)
	}
	res.GameSeconds = st.Elapsed
	return res, nil
}

// await reads frames until the STATUS or ERROR reply to the last action.
func (r *Runner) await(conn *websocket.Conn, res *RunResult) (statusPayload, error) {
	conn.SetReadDeadline(time.Now().Add(r.Timeout))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return statusPayload{}, err
		}
		switch f.Type {
		case network.MsgTypeEvent:
			res.Events++
		case network.MsgTypeError:
			res.Rejected++
			var p network.ErrorPayload
			json.Unmarshal(f.Payload, &p)
			return statusPayload{}, errors.New(p.Error)
		case network.MsgTypeStatus:
			var st statusPayload
			if err := json.Unmarshal(f.Payload, &st); err != nil {
				return st, err
			}
			return st, nil
		}
	}
}
