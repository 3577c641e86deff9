package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Dispatcher synthesis. Both flavours register the dispatcher as an ordinary
// overload of the raw name so later stages need no special cases; the
// candidate list behind each dispatcher is recorded for the code generator.

// dispatchTypeMatch routes a statement through a type-match dispatcher: the
// call supplied a concrete base type where overloads accept a sum, so the
// target overload is picked by runtime tag.
func (a *Analyzer) dispatchTypeMatch(s *ir.Statement, raw stringpool.Handle, matched overloadCandidate) bool {
	arity := len(s.Parameters)
	name := a.ns.Strings.Pool(a.ns.Strings.MustGet(raw) + "@@typematch")

	if !a.ns.Functions.Exists(name) {
		candidates := a.sameArityCandidates(raw, arity)

		// Candidates must agree on return type; divergence is a user
		// error, and the matched overload's type is adopted so analysis
		// can continue.
		ret := matched.sig.ReturnType()
		for _, cand := range candidates {
			sig, _ := a.ns.Functions.SignatureOf(cand)
			if sig.ReturnType() != ret {
				a.errs.SemanticError(diag.KindAmbiguousDispatch,
					"Type dispatch candidates disagree on return type")
				break
			}
		}

		// Reference semantics must agree per position, unless one of the
		// diverging overloads accepts nothing there.
		for j := 0; j < arity; j++ {
			ref := matched.sig.Parameter(j).IsReference
			for _, cand := range candidates {
				sig, _ := a.ns.Functions.SignatureOf(cand)
				p := sig.Parameter(j)
				if p.IsReference != ref && p.Type != types.Nothing && matched.sig.Parameter(j).Type != types.Nothing {
					a.errs.SemanticError(diag.KindAmbiguousDispatch,
						"Type dispatch candidates disagree on reference semantics")
				}
			}
		}

		dsig := matched.sig.Clone()
		a.ns.Functions.AddExtern(raw, name, dsig)
		a.ns.Dispatchers[name] = &ir.DispatchInfo{Kind: ir.DispatchTypeMatch, Candidates: candidates}
		a.ns.DispatcherOrder = append(a.ns.DispatcherOrder, name)
	}

	sig, _ := a.ns.Functions.Extern(name)
	s.Name = name
	s.MyType = sig.ReturnType()

	for _, j := range matched.widened {
		a.annotateWidening(s.Parameters[j])
	}
	for j := 0; j < arity; j++ {
		if a.anyOverloadTakesReference(raw, arity, j) {
			a.makeReferenceArgument(s.Parameters[j])
		}
	}
	return true
}

// dispatchPattern routes a statement through a pattern-match dispatcher: the
// call's argument at a pattern-matched position is not a literal, so the
// target overload is picked by runtime comparison.
func (a *Analyzer) dispatchPattern(s *ir.Statement, raw stringpool.Handle) bool {
	arity := len(s.Parameters)
	name := a.ns.Strings.Pool(a.ns.Strings.MustGet(raw) + "@@patternmatch")

	if !a.ns.Functions.Exists(name) {
		candidates := a.sameArityCandidates(raw, arity)

		// Pattern overloads check first, in registration order; the
		// general overloads close the dispatch.
		ordered := make([]stringpool.Handle, 0, len(candidates))
		var general *types.FunctionSignature
		for _, cand := range candidates {
			sig, _ := a.ns.Functions.SignatureOf(cand)
			if signatureHasPayload(sig) {
				ordered = append(ordered, cand)
			}
		}
		for _, cand := range candidates {
			sig, _ := a.ns.Functions.SignatureOf(cand)
			if !signatureHasPayload(sig) {
				ordered = append(ordered, cand)
				if general == nil {
					general = sig
				}
			}
		}
		if general == nil {
			a.errs.SemanticError(diag.KindNoMatchingOverload,
				"Pattern-matched function has no general overload")
			return false
		}
		for _, cand := range ordered {
			sig, _ := a.ns.Functions.SignatureOf(cand)
			if !sig.MatchesDynamicPattern(general) {
				a.errs.SemanticError(diag.KindAmbiguousDispatch,
					"Pattern dispatch candidates disagree on signature")
			}
		}

		a.ns.Functions.AddExtern(raw, name, general.Clone())
		a.ns.Dispatchers[name] = &ir.DispatchInfo{Kind: ir.DispatchPattern, Candidates: ordered}
		a.ns.DispatcherOrder = append(a.ns.DispatcherOrder, name)
	}

	sig, _ := a.ns.Functions.Extern(name)
	s.Name = name
	s.MyType = sig.ReturnType()
	return true
}

// sameArityCandidates returns the raw name's overloads of the given arity,
// in insertion order, excluding previously synthesised dispatchers.
func (a *Analyzer) sameArityCandidates(raw stringpool.Handle, arity int) []stringpool.Handle {
	var out []stringpool.Handle
	for _, ov := range a.ns.Functions.OverloadNames(raw) {
		if _, isDispatcher := a.ns.Dispatchers[ov]; isDispatcher {
			continue
		}
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok || sig.NumParameters() != arity {
			continue
		}
		out = append(out, ov)
	}
	return out
}

func (a *Analyzer) anyOverloadTakesReference(raw stringpool.Handle, arity, position int) bool {
	for _, ov := range a.ns.Functions.OverloadNames(raw) {
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok || sig.NumParameters() != arity {
			continue
		}
		if sig.Parameter(position).IsReference {
			return true
		}
	}
	return false
}

func signatureHasPayload(sig *types.FunctionSignature) bool {
	for i := 0; i < sig.NumParameters(); i++ {
		if sig.Parameter(i).HasPayload() {
			return true
		}
	}
	return false
}
