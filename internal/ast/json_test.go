package ast

import (
	"testing"
)

const sampleTree = `{
  "kind": "program",
  "definitions": [
    {
      "kind": "structure",
      "name": {"kind": "identifier", "value": "P", "begin": 10, "end": 11},
      "members": [
        {
          "kind": "structure_member",
          "type": {"kind": "identifier", "value": "integer", "begin": 14, "end": 21},
          "name": {"kind": "identifier", "value": "x", "begin": 22, "end": 23}
        }
      ]
    },
    {
      "kind": "function",
      "name": {"kind": "identifier", "value": "main", "begin": 30, "end": 34},
      "params": [
        {
          "kind": "named_parameter",
          "type": {"kind": "identifier", "value": "integer", "begin": 36, "end": 43},
          "name": {"kind": "identifier", "value": "a", "begin": 44, "end": 45},
          "ref": true
        }
      ],
      "code": {
        "kind": "code_block",
        "begin": 50,
        "entries": [
          {
            "kind": "assignment",
            "lhs": [{"kind": "identifier", "value": "a", "begin": 52, "end": 53}],
            "operator": {"kind": "identifier", "value": "=", "begin": 54, "end": 55},
            "rhs": {
              "kind": "expression",
              "first": {
                "atom": {"kind": "identifier", "value": "1", "begin": 56, "end": 57}
              },
              "fragments": [
                {
                  "operator": {"kind": "identifier", "value": "+", "begin": 58, "end": 59},
                  "component": {
                    "atom": {"kind": "identifier", "value": "2", "begin": 60, "end": 61}
                  }
                }
              ]
            }
          }
        ]
      }
    }
  ]
}`

func TestDecodeProgram(t *testing.T) {
	program, err := DecodeProgram([]byte(sampleTree))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(program.Definitions) != 2 {
		t.Fatalf("decoded %d definitions, want 2", len(program.Definitions))
	}

	structure, ok := program.Definitions[0].(*Structure)
	if !ok {
		t.Fatalf("definition 0 is %T, want *Structure", program.Definitions[0])
	}
	if structure.Name.Value != "P" || structure.Name.Begin != 10 {
		t.Errorf("structure name %q at %d, want P at 10", structure.Name.Value, structure.Name.Begin)
	}
	member, ok := structure.Members[0].(*StructureMemberVariable)
	if !ok || member.TypeName.Value != "integer" {
		t.Errorf("member 0 decoded as %T (%+v)", structure.Members[0], structure.Members[0])
	}

	fn, ok := program.Definitions[1].(*Function)
	if !ok {
		t.Fatalf("definition 1 is %T, want *Function", program.Definitions[1])
	}
	param, ok := fn.Params[0].(*NamedFunctionParameter)
	if !ok {
		t.Fatalf("parameter is %T, want *NamedFunctionParameter", fn.Params[0])
	}
	if param.RefTag == nil {
		t.Error("ref flag did not decode into a ref tag")
	}

	// An omitted return decodes to the undefined marker.
	if _, ok := fn.Return.(*Undefined); !ok {
		t.Errorf("omitted return decoded as %T, want *Undefined", fn.Return)
	}

	code, ok := fn.Code.(*CodeBlock)
	if !ok {
		t.Fatalf("code decoded as %T, want *CodeBlock", fn.Code)
	}
	assignment, ok := code.Entries[0].(*Assignment)
	if !ok {
		t.Fatalf("entry 0 is %T, want *Assignment", code.Entries[0])
	}
	rhs, ok := assignment.RHS.(*Expression)
	if !ok {
		t.Fatalf("assignment RHS is %T, want *Expression", assignment.RHS)
	}
	if len(rhs.Fragments) != 1 || rhs.Fragments[0].Operator.Value != "+" {
		t.Errorf("expression fragments decoded incorrectly: %+v", rhs.Fragments)
	}
}

func TestDecodeProgramRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeProgram([]byte(`{"kind": "mystery"}`)); err == nil {
		t.Error("unknown node kind decoded without error")
	}
	if _, err := DecodeProgram([]byte(`not json`)); err == nil {
		t.Error("invalid JSON decoded without error")
	}
	if _, err := DecodeProgram([]byte(`{"kind": "identifier", "value": "x"}`)); err == nil {
		t.Error("non-program root decoded without error")
	}
}
