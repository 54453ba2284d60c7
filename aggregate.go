package main

import "sort"

const defaultTopN = 10

// PersonCount is one row of the send/receive ranking.
type PersonCount struct {
	Person   string `json:"person"`
	Sent     int    `json:"sent"`
	Received int    `json:"received"`
}

// MonthlyTable is a dense month-by-person grid. Counts[i][j] belongs to
// Months[i] and People[j]; absent activity is an explicit zero.
type MonthlyTable struct {
	Months []Month  `json:"months"`
	People []string `json:"people"`
	Counts [][]int  `json:"counts"`
}

func newMonthlyTable(months []Month, people []string) MonthlyTable {
	counts := make([][]int, len(months))
	for i := range counts {
		counts[i] = make([]int, len(people))
	}
	return MonthlyTable{Months: months, People: people, Counts: counts}
}

// Value returns the count for a month and person, and whether the cell exists.
func (t MonthlyTable) Value(month Month, person string) (int, bool) {
	for i, m := range t.Months {
		if m != month {
			continue
		}
		for j, p := range t.People {
			if p == person {
				return t.Counts[i][j], true
			}
		}
	}
	return 0, false
}

// Column returns a person's counts in month order.
func (t MonthlyTable) Column(person string) []int {
	for j, p := range t.People {
		if p != person {
			continue
		}
		values := make([]int, len(t.Months))
		for i := range t.Months {
			values[i] = t.Counts[i][j]
		}
		return values
	}
	return nil
}

// rankPersons joins per-sender event counts with per-recipient fact counts.
// Senders come first, descending by sent with ties in name order; people who
// only ever received follow, descending by received.
func rankPersons(events []CleanEvent, facts []ContactFact) []PersonCount {
	sent := map[string]int{}
	for _, event := range events {
		sent[event.Sender]++
	}
	received := map[string]int{}
	for _, fact := range facts {
		received[fact.Recipient]++
	}

	senders := make([]PersonCount, 0, len(sent))
	for person, count := range sent {
		senders = append(senders, PersonCount{Person: person, Sent: count, Received: received[person]})
	}
	sort.Slice(senders, func(i, j int) bool {
		return senders[i].Person < senders[j].Person
	})
	sort.SliceStable(senders, func(i, j int) bool {
		return senders[i].Sent > senders[j].Sent
	})

	receiversOnly := []PersonCount{}
	for person, count := range received {
		if _, ok := sent[person]; ok {
			continue
		}
		receiversOnly = append(receiversOnly, PersonCount{Person: person, Received: count})
	}
	sort.Slice(receiversOnly, func(i, j int) bool {
		if receiversOnly[i].Received != receiversOnly[j].Received {
			return receiversOnly[i].Received > receiversOnly[j].Received
		}
		return receiversOnly[i].Person < receiversOnly[j].Person
	})

	return append(senders, receiversOnly...)
}

// topSenders takes the first n people of the ranking who sent anything.
func topSenders(ranking []PersonCount, n int) []string {
	top := []string{}
	for _, entry := range ranking {
		if len(top) >= n || entry.Sent == 0 {
			break
		}
		top = append(top, entry.Person)
	}
	return top
}

func monthlySentCounts(rel Relation, top []string) MonthlyTable {
	table := newMonthlyTable(rel.Months(), top)
	for i, month := range table.Months {
		for j, person := range top {
			table.Counts[i][j] = rel.SentByMonth[senderMonth{Sender: person, Month: month}]
		}
	}
	return table
}

// monthlyUniqueContacts counts, per month, the distinct senders who wrote to
// each top sender.
func monthlyUniqueContacts(rel Relation, top []string) MonthlyTable {
	table := newMonthlyTable(rel.Months(), top)

	column := make(map[string]int, len(top))
	for j, person := range top {
		column[person] = j
	}
	row := make(map[Month]int, len(table.Months))
	for i, month := range table.Months {
		row[month] = i
	}

	seen := map[ContactFact]struct{}{}
	for _, fact := range rel.Facts {
		j, ok := column[fact.Recipient]
		if !ok {
			continue
		}
		if _, dup := seen[fact]; dup {
			continue
		}
		seen[fact] = struct{}{}
		table.Counts[row[fact.Month]][j]++
	}
	return table
}
