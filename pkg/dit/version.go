package dit

// Version is dit's release version, printed by "dit --version".
const Version = "0.1.0"
