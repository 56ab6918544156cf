package console

import (
	"strconv"
	"time"

	"github.com/mesh-intelligence/backstage/pkg/query"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

var (
	validStatuses   = []string{types.StatusValid, types.StatusInvalid}
	roomStatuses    = []string{types.StatusLive, types.StatusOffline, types.StatusBanned}
	paymentStatuses = []string{types.StatusPending, types.StatusPaid, types.StatusRefunded, types.StatusFailed}
	reportStatuses  = []string{types.StatusPending, types.StatusHandled, types.StatusRejected}
)

// baseFields are the filter keys every table accepts.
func baseFields[PT types.Record]() query.Schema[PT] {
	return query.Schema[PT]{
		"status": {Kind: query.Exact, Get: func(r PT) string { return r.Meta().Status }},
		"created": {Kind: query.Range, Get: func(r PT) string {
			return r.Meta().CreatedAt.UTC().Format(time.RFC3339)
		}},
	}
}

func withBase[PT types.Record](s query.Schema[PT]) query.Schema[PT] {
	for k, f := range baseFields[PT]() {
		s[k] = f
	}
	return s
}

var userTable = Definition[*types.User]{
	Name: types.TableUsers,
	Schema: withBase(query.Schema[*types.User]{
		"nickname":   {Kind: query.Substring, Get: func(u *types.User) string { return u.Nickname }},
		"phone":      {Kind: query.Substring, Get: func(u *types.User) string { return u.Phone }},
		"is_anchor":  {Kind: query.Exact, Get: func(u *types.User) string { return strconv.FormatBool(u.IsAnchor) }},
		"registered": {Kind: query.Range, Get: func(u *types.User) string { return u.RegisteredAt }},
	}),
	Statuses:      validStatuses,
	DefaultStatus: types.StatusValid,
}

var roomTable = Definition[*types.Room]{
	Name: types.TableRooms,
	Schema: withBase(query.Schema[*types.Room]{
		"title":     {Kind: query.Substring, Get: func(r *types.Room) string { return r.Title }},
		"anchor_id": {Kind: query.Substring, Get: func(r *types.Room) string { return r.AnchorID }},
		"category":  {Kind: query.Exact, Get: func(r *types.Room) string { return r.Category }},
		"started":   {Kind: query.Range, Get: func(r *types.Room) string { return r.StartedAt }},
	}),
	Statuses:      roomStatuses,
	DefaultStatus: types.StatusOffline,
}

var giftTable = Definition[*types.Gift]{
	Name: types.TableGifts,
	Schema: withBase(query.Schema[*types.Gift]{
		"name":   {Kind: query.Substring, Get: func(g *types.Gift) string { return g.Name }},
		"effect": {Kind: query.Exact, Get: func(g *types.Gift) string { return g.Effect }},
	}),
	Statuses:      validStatuses,
	DefaultStatus: types.StatusValid,
	Sorted:        true,
}

var paymentTable = Definition[*types.Payment]{
	Name: types.TablePayments,
	Schema: withBase(query.Schema[*types.Payment]{
		"order_no": {Kind: query.Substring, Get: func(p *types.Payment) string { return p.OrderNo }},
		"user_id":  {Kind: query.Substring, Get: func(p *types.Payment) string { return p.UserID }},
		"channel":  {Kind: query.Exact, Get: func(p *types.Payment) string { return p.Channel }},
		"paid":     {Kind: query.Range, Get: func(p *types.Payment) string { return p.PaidAt }},
	}),
	Statuses:      paymentStatuses,
	DefaultStatus: types.StatusPending,
}

var agentTable = Definition[*types.Agent]{
	Name: types.TableAgents,
	Schema: withBase(query.Schema[*types.Agent]{
		"name":    {Kind: query.Substring, Get: func(a *types.Agent) string { return a.Name }},
		"contact": {Kind: query.Substring, Get: func(a *types.Agent) string { return a.Contact }},
		"region":  {Kind: query.Exact, Get: func(a *types.Agent) string { return a.Region }},
	}),
	Statuses:      validStatuses,
	DefaultStatus: types.StatusValid,
}

var reportTable = Definition[*types.Report]{
	Name: types.TableReports,
	Schema: withBase(query.Schema[*types.Report]{
		"reporter_id": {Kind: query.Substring, Get: func(r *types.Report) string { return r.ReporterID }},
		"target_id":   {Kind: query.Substring, Get: func(r *types.Report) string { return r.TargetID }},
		"reason":      {Kind: query.Substring, Get: func(r *types.Report) string { return r.Reason }},
		"reported":    {Kind: query.Range, Get: func(r *types.Report) string { return r.ReportedAt }},
	}),
	Statuses:      reportStatuses,
	DefaultStatus: types.StatusPending,
}

var settingTable = Definition[*types.Setting]{
	Name: types.TableSettings,
	Schema: withBase(query.Schema[*types.Setting]{
		"key":   {Kind: query.Substring, Get: func(s *types.Setting) string { return s.Key }},
		"group": {Kind: query.Exact, Get: func(s *types.Setting) string { return s.Group }},
	}),
	Statuses:      validStatuses,
	DefaultStatus: types.StatusValid,
	Sorted:        true,
}

var bankTable = Definition[*types.Bank]{
	Name: types.TableBanks,
	Schema: withBase(query.Schema[*types.Bank]{
		"name": {Kind: query.Substring, Get: func(b *types.Bank) string { return b.Name }},
		"code": {Kind: query.Substring, Get: func(b *types.Bank) string { return b.Code }},
	}),
	Statuses:      validStatuses,
	DefaultStatus: types.StatusValid,
	Sorted:        true,
}
