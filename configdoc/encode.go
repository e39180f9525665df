package configdoc

// EncodeVariable re-serializes a Variable into the same generic shape the
// authoring tool sent it in (§4.A snapshot_json: "same shape ... augmented
// with live Value"), so that a snapshot round-trips through Decode to
// produce an equivalent store (§8 property 4).
func EncodeVariable(v Variable) map[string]any {
	out := map[string]any{"Name": v.Name}

	switch v.Kind {
	case KindDigitalIO:
		out["Type"] = string(KindDigitalIO)
		out["Pin"] = v.PinName
		out["Direction"] = string(v.Dir)
		out["Analog"] = v.IsAnalog

	case KindOneWireInput:
		out["Type"] = string(KindOneWireInput)
		out["Sensor"] = v.SensorName
		out["Value"] = v.CachedF64

	case KindAdcSensor:
		out["Type"] = string(KindAdcSensor)
		out["SensorType"] = v.SensorType
		out["ClockPin"] = v.ClockPin
		out["DataPin"] = v.DataPin
		out["MapLow"] = v.MapLow
		out["MapHigh"] = v.MapHigh
		out["Gain"] = v.Gain
		out["SamplingRate"] = v.SamplingRate
		out["Value"] = v.CachedF64

	case KindBoolean:
		out["Type"] = string(KindBoolean)
		out["Value"] = v.BoolValue

	case KindNumber:
		out["Type"] = string(KindNumber)
		out["Value"] = v.NumValue

	case KindCounter:
		out["Type"] = string(KindCounter)
		out["PV"] = v.PV
		out["CV"] = v.CV
		out["CU"] = v.CU
		out["CD"] = v.CD
		out["QU"] = v.QU
		out["QD"] = v.QD

	case KindTimer:
		out["Type"] = string(KindTimer)
		out["PT"] = v.PT
		out["ET"] = v.ET
		out["IN"] = v.In
		out["Q"] = v.Q

	case KindTime:
		if v.IsCurrentTime {
			out["Type"] = currentTimeTag
		} else {
			out["Type"] = string(KindTime)
		}
		out["Value"] = v.NumValue
	}

	return out
}
