package netlist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Signature computes the canonical structural signature of a cell.
//
// The signature is invariant under instance reordering, instance
// renaming and internal net renaming, but sensitive to everything LVS
// cares about: terminal names and directions, device masters, device
// parameters, and connectivity.
//
// Canonicalization refines instance and net classes together until the
// partition stops splitting. Terminal nets keep their names and seed
// the refinement; internal nets start indistinguishable and split by
// the classes of the instances and pins touching them. When symmetric
// internal nets survive refinement (a ring, a cross-coupled pair), one
// net of the smallest tied class is distinguished per round and the
// branch with the smallest encoding wins, so the result never depends
// on input order.
func Signature(c *Cell) (Dict, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ports := make(map[string]bool, len(c.Terms))
	terms := make(List, 0, len(c.Terms))
	sortedTerms := append([]Term(nil), c.Terms...)
	sort.Slice(sortedTerms, func(i, j int) bool { return sortedTerms[i].Name < sortedTerms[j].Name })
	for _, t := range sortedTerms {
		ports[t.Name] = true
		terms = append(terms, Dict{
			"name": String(t.Name),
			"dir":  String(string(t.Dir)),
		})
	}

	insts, err := canonicalInstances(c.Instances, ports)
	if err != nil {
		return nil, err
	}

	return Dict{
		"name":      String(c.Name),
		"terms":     terms,
		"instances": insts,
	}, nil
}

// canonicalInstances orders instances and renames internal nets so the
// result depends only on structure, never on slice order or net names.
func canonicalInstances(instances []Instance, ports map[string]bool) (List, error) {
	base := make([]string, len(instances))
	for i, inst := range instances {
		k, err := baseKey(inst)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", inst.Name, err)
		}
		base[i] = k
	}

	netKey := make(map[string]string)
	for _, inst := range instances {
		for _, net := range inst.Conns {
			if _, ok := netKey[net]; ok {
				continue
			}
			if ports[net] {
				netKey[net] = "port:" + net
			} else {
				netKey[net] = "net"
			}
		}
	}

	list, _, err := solve(instances, base, ports, netKey)
	return list, err
}

// solve refines net classes to a fixed point, then either emits the
// canonical instance list or splits one net of the smallest symmetric
// class and keeps the branch with the smallest encoding.
func solve(instances []Instance, base []string, ports map[string]bool, netKey map[string]string) (List, string, error) {
	netKey = refine(instances, base, ports, netKey)

	tied := tiedNets(ports, netKey)
	if tied == nil {
		return emit(instances, ports, netKey)
	}

	var bestList List
	var bestEnc string
	for _, net := range tied {
		branch := make(map[string]string, len(netKey))
		for k, v := range netKey {
			branch[k] = v
		}
		branch[net] = digest(branch[net] + "|split")
		list, enc, err := solve(instances, base, ports, branch)
		if err != nil {
			return nil, "", err
		}
		if bestEnc == "" || enc < bestEnc {
			bestList, bestEnc = list, enc
		}
	}
	return bestList, bestEnc, nil
}

// refine alternates instance keys (base shape plus pin net classes) and
// internal net keys (chained with the sorted incident instance keys)
// until neither partition grows. Chaining the previous net key means a
// class can only ever split, so the loop terminates.
func refine(instances []Instance, base []string, ports map[string]bool, netKey map[string]string) map[string]string {
	instKey := make([]string, len(instances))
	prevClasses := -1
	for {
		for i, inst := range instances {
			var sb strings.Builder
			sb.WriteString(base[i])
			for _, pin := range sortedPins(inst.Conns) {
				sb.WriteString("|")
				sb.WriteString(pin)
				sb.WriteString("=")
				sb.WriteString(netKey[inst.Conns[pin]])
			}
			instKey[i] = digest(sb.String())
		}

		next := make(map[string]string, len(netKey))
		for net, key := range netKey {
			if ports[net] {
				next[net] = key
				continue
			}
			var incident []string
			for i, inst := range instances {
				for pin, n := range inst.Conns {
					if n == net {
						incident = append(incident, instKey[i]+"@"+pin)
					}
				}
			}
			sort.Strings(incident)
			next[net] = digest(key + "|" + strings.Join(incident, ","))
		}
		netKey = next

		classes := distinctValues(netKey) + distinctKeys(instKey)
		if classes == prevClasses {
			return netKey
		}
		prevClasses = classes
	}
}

// tiedNets returns the smallest-keyed class of internal nets that
// refinement could not tell apart, or nil when every class is a
// singleton.
func tiedNets(ports map[string]bool, netKey map[string]string) []string {
	byKey := make(map[string][]string)
	for net, key := range netKey {
		if ports[net] {
			continue
		}
		byKey[key] = append(byKey[key], net)
	}
	var tied []string
	var tiedKey string
	for key, nets := range byKey {
		if len(nets) < 2 {
			continue
		}
		if tied == nil || key < tiedKey {
			tied, tiedKey = nets, key
		}
	}
	sort.Strings(tied)
	return tied
}

// emit renames internal nets n0, n1, ... in refined key order, encodes
// each instance and sorts the entries by their encoding.
func emit(instances []Instance, ports map[string]bool, netKey map[string]string) (List, string, error) {
	internal := make([]string, 0, len(netKey))
	for net := range netKey {
		if !ports[net] {
			internal = append(internal, net)
		}
	}
	sort.Slice(internal, func(i, j int) bool { return netKey[internal[i]] < netKey[internal[j]] })
	rename := make(map[string]string, len(internal))
	for i, net := range internal {
		rename[net] = fmt.Sprintf("n%d", i)
	}

	type encoded struct {
		entry Dict
		enc   string
	}
	items := make([]encoded, 0, len(instances))
	for _, inst := range instances {
		conns := make(Dict, len(inst.Conns))
		for _, pin := range sortedPins(inst.Conns) {
			net := inst.Conns[pin]
			if ports[net] {
				conns[pin] = String(net)
			} else {
				conns[pin] = String(rename[net])
			}
		}
		entry := Dict{
			"master": String(inst.Master.String()),
			"conns":  conns,
		}
		if len(inst.Params) > 0 {
			entry["params"] = inst.Params
		}
		b, err := MarshalCanonical(entry)
		if err != nil {
			return nil, "", err
		}
		items = append(items, encoded{entry: entry, enc: string(b)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].enc < items[j].enc })

	list := make(List, 0, len(items))
	var sb strings.Builder
	for _, it := range items {
		list = append(list, it.entry)
		sb.WriteString(it.enc)
	}
	return list, sb.String(), nil
}

// baseKey is the connectivity-free part of an instance key: canonical
// JSON of its master and parameters.
func baseKey(inst Instance) (string, error) {
	entry := Dict{"master": String(inst.Master.String())}
	if len(inst.Params) > 0 {
		entry["params"] = inst.Params
	}
	b, err := MarshalCanonical(entry)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func distinctValues(m map[string]string) int {
	seen := make(map[string]bool, len(m))
	for _, v := range m {
		seen[v] = true
	}
	return len(seen)
}

func distinctKeys(keys []string) int {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	return len(seen)
}

func sortedPins(conns map[string]string) []string {
	pins := make([]string, 0, len(conns))
	for p := range conns {
		pins = append(pins, p)
	}
	sort.Strings(pins)
	return pins
}

// Equal reports whether two cells are structurally equal under the
// canonical signature, ignoring library names.
func Equal(a, b *Cell) (bool, error) {
	sa, err := Signature(a)
	if err != nil {
		return false, fmt.Errorf("cell %s: %w", a.Name, err)
	}
	sb, err := Signature(b)
	if err != nil {
		return false, fmt.Errorf("cell %s: %w", b.Name, err)
	}
	// Name participates in the signature; compare structure only.
	sa["name"] = String("")
	sb["name"] = String("")
	ba, err := MarshalCanonical(sa)
	if err != nil {
		return false, err
	}
	bb, err := MarshalCanonical(sb)
	if err != nil {
		return false, err
	}
	return strings.Compare(string(ba), string(bb)) == 0, nil
}
